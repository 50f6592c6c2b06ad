package services

import (
	"fmt"

	"timber-portal/config"
	"timber-portal/models"

	"gopkg.in/gomail.v2"
)

// MailService sends the portal notification mails. Sending is best-effort:
// delivery runs in a goroutine and failures are only logged, a dead SMTP
// relay must never block a shipment transition.
type MailService struct{}

func NewMailService() *MailService {
	return &MailService{}
}

func (s *MailService) send(to []string, subject, htmlBody string) {
	if !config.MailEnabled || len(to) == 0 {
		return
	}

	go func() {
		msg := gomail.NewMessage()
		msg.SetHeader("From", config.MailFrom)
		msg.SetHeader("To", to...)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/html", htmlBody)

		dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPassword)
		if err := dialer.DialAndSend(msg); err != nil {
			config.LogError(config.GetLogger(), "services", "MailService.send", subject, to, err)
		}
	}()
}

// SendShipmentSubmitted notifies the destination organisation that a
// shipment is waiting for review.
func (s *MailService) SendShipmentSubmitted(shipment *models.Shipment, from, to *models.Organisation) {
	if to.ContactEmail == "" {
		return
	}

	subject := fmt.Sprintf("Shipment %s awaiting your review", shipment.Code)
	body := fmt.Sprintf(`
		<html>
			<body>
				<p>Hello %s,</p>
				<p>%s has submitted shipment <b>%s</b> to your organisation.</p>
				<p>Please review it in the timber portal and accept or reject it.</p>
			</body>
		</html>
	`, to.Name, from.Name, shipment.Code)

	s.send([]string{to.ContactEmail}, subject, body)
}

// SendShipmentReviewed notifies the sender of the review outcome.
func (s *MailService) SendShipmentReviewed(shipment *models.Shipment, from, to *models.Organisation) {
	if from.ContactEmail == "" {
		return
	}

	var subject, outcome string
	if shipment.Status == models.ShipmentStatusAccepted {
		subject = fmt.Sprintf("Shipment %s accepted", shipment.Code)
		outcome = fmt.Sprintf("%s has <b>accepted</b> shipment %s. The packages now belong to them.", to.Name, shipment.Code)
	} else {
		subject = fmt.Sprintf("Shipment %s rejected", shipment.Code)
		outcome = fmt.Sprintf("%s has <b>rejected</b> shipment %s.<br>Reason: %s", to.Name, shipment.Code, shipment.RejectionReason)
	}

	body := fmt.Sprintf(`
		<html>
			<body>
				<p>Hello %s,</p>
				<p>%s</p>
			</body>
		</html>
	`, from.Name, outcome)

	s.send([]string{from.ContactEmail}, subject, body)
}

// SendCredentials mails an initial password to a newly created user.
func (s *MailService) SendCredentials(user *models.User, password string) {
	if user.Email == "" {
		return
	}

	subject := "Your timber portal account"
	body := fmt.Sprintf(`
		<html>
			<body>
				<p>Hello %s,</p>
				<p>An account has been created for you in the timber portal.</p>
				<p>Username: <b>%s</b><br>Password: <b>%s</b></p>
				<p>Please change your password after your first login.</p>
			</body>
		</html>
	`, user.Name, user.Username, password)

	s.send([]string{user.Email}, subject, body)
}
