package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"flashdeck/internal/engine"
	"flashdeck/internal/models"
)

// ReportService emails a per-card completion report to a deck's owner via
// Amazon SES when a learner finishes the deck
type ReportService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
}

// NewReportService creates a new report service. An empty fromEmail yields
// a disabled service that skips every send.
func NewReportService(awsRegion, fromEmail, fromName string) (*ReportService, error) {
	if fromEmail == "" {
		log.Println("Report service disabled: REPORT_FROM_EMAIL not configured")
		return &ReportService{enabled: false}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Report service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &ReportService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the report service is enabled
func (s *ReportService) IsEnabled() bool {
	return s.enabled
}

// SendCompletionReport emails the deck owner a summary of a finished
// session. Failures are logged, not returned, since it runs off the
// request path.
func (s *ReportService) SendCompletionReport(session models.LearnerSession, deck models.Deck, results engine.ResultSummary) {
	if !s.enabled {
		return
	}
	if deck.OwnerEmail == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	learner := session.LearnerID
	if learner == "" {
		learner = "An anonymous learner"
	}

	subject := fmt.Sprintf("%s finished \"%s\": %d/%d", learner, deck.Title, results.Score, results.MaxScore)

	var rows, lines strings.Builder
	for _, card := range results.Cards {
		if card.DisplayOnly {
			continue
		}
		outcome := "wrong"
		if card.Correct {
			outcome = "correct"
		}
		answer := card.UserAnswer
		if answer == "" {
			answer = "(no answer)"
		}
		fmt.Fprintf(&rows, "<tr><td>%d</td><td>%s</td><td>%s</td></tr>\n", card.Index+1, answer, outcome)
		fmt.Fprintf(&lines, "Card %d: %s (%s)\n", card.Index+1, answer, outcome)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body>
	<h2>%s completed "%s"</h2>
	<p>Final score: <strong>%d / %d</strong></p>
	<table border="1" cellpadding="4" cellspacing="0">
		<tr><th>Card</th><th>Answer given</th><th>Outcome</th></tr>
		%s
	</table>
	<p style="font-size: 12px; color: #666;">This is an automated report. Please do not reply.</p>
</body>
</html>
`, learner, deck.Title, results.Score, results.MaxScore, rows.String())

	textBody := fmt.Sprintf(`%s completed "%s"

Final score: %d / %d

%s
---
This is an automated report. Please do not reply.
`, learner, deck.Title, results.Score, results.MaxScore, lines.String())

	if err := s.sendEmail(ctx, deck.OwnerEmail, subject, htmlBody, textBody); err != nil {
		log.Printf("Failed to send completion report for session %s: %v", session.ID, err)
	}
}

func (s *ReportService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Report sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
