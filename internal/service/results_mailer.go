package service

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"quizmaster/internal/models"
	"quizmaster/internal/validation"
)

// emailSender is the part of the SES client the mailer uses
type emailSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// ResultsMailer sends quiz results via Amazon SES
type ResultsMailer struct {
	client    emailSender
	fromEmail string
	fromName  string
	enabled   bool
	debug     bool
}

// NewResultsMailer creates a new results mailer. An empty fromEmail yields
// a disabled mailer that skips every send.
func NewResultsMailer(ctx context.Context, awsRegion, fromEmail, fromName string, debug bool) (*ResultsMailer, error) {
	if fromEmail == "" {
		log.Println("Results mailer disabled: SES_FROM_EMAIL not configured")
		return &ResultsMailer{enabled: false, debug: debug}, nil
	}

	if debug {
		log.Printf("[DEBUG] Initializing results mailer: region=%s, from=%s", awsRegion, fromEmail)
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Results mailer enabled: from=%s, region=%s", fromEmail, awsRegion)
	return newResultsMailer(sesv2.NewFromConfig(cfg), fromEmail, fromName, debug), nil
}

func newResultsMailer(client emailSender, fromEmail, fromName string, debug bool) *ResultsMailer {
	return &ResultsMailer{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		debug:     debug,
	}
}

// IsEnabled returns whether the mailer will actually send
func (m *ResultsMailer) IsEnabled() bool {
	return m.enabled
}

// SendResults emails the score and per-question breakdown to toEmail
func (m *ResultsMailer) SendResults(ctx context.Context, toEmail string, view models.ResultsView) error {
	if err := validation.ValidateEmail(toEmail); err != nil {
		return err
	}
	toEmail = strings.TrimSpace(toEmail)

	if !m.enabled {
		log.Printf("Skipping email send (mailer disabled): results to %s", toEmail)
		return nil
	}

	subject := fmt.Sprintf("Your %s results: %d/%d", view.QuizType, view.Score, view.Total)
	htmlBody, textBody := renderResults(view)

	if m.debug {
		log.Printf("[DEBUG] Sending results email: subject=%s, to=%s, html=%d bytes", subject, toEmail, len(htmlBody))
	}
	return m.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

func renderResults(view models.ResultsView) (string, string) {
	var rows, lines strings.Builder
	for i, r := range view.Results {
		outcome := "Correct"
		if !r.IsCorrect {
			outcome = "Incorrect"
		}
		fmt.Fprintf(&rows, "<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			i+1,
			html.EscapeString(r.Question),
			html.EscapeString(r.UserAnswer),
			html.EscapeString(r.CorrectAnswer),
			outcome,
		)
		fmt.Fprintf(&lines, "%d. %s\n   Your answer: %s\n   Correct answer: %s\n   %s\n\n",
			i+1, r.Question, r.UserAnswer, r.CorrectAnswer, outcome)
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #4a90e2; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		table { width: 100%%; border-collapse: collapse; }
		td { border-bottom: 1px solid #ddd; padding: 6px; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>%s</h1>
			<p>You scored %d out of %d</p>
		</div>
		<div class="content">
			<table>
%s			</table>
		</div>
	</div>
</body>
</html>
`, html.EscapeString(view.QuizType), view.Score, view.Total, rows.String())

	textBody := fmt.Sprintf("%s\nYou scored %d out of %d\n\n%s", view.QuizType, view.Score, view.Total, lines.String())
	return htmlBody, textBody
}

// sendEmail sends an email using Amazon SES
func (m *ResultsMailer) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := m.fromEmail
	if m.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
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

	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	if m.debug && result.MessageId != nil {
		log.Printf("[DEBUG] Message ID: %s", *result.MessageId)
	}
	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
