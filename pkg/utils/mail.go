package utils

import (
	"context"
	"fmt"

	"github.com/inkpress/inkwell/pkg/logger"
	"gopkg.in/gomail.v2"
)

// EmailConfig holds SMTP and app settings, passed in from app config.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	AppURL       string
	FromEmail    string
}

// SendActivationEmail sends an account activation email with OTP and link.
func SendActivationEmail(ctx context.Context, config EmailConfig, email, username, token string, otp int64, log *logger.Logger) error {
	activationLink := fmt.Sprintf("%s/activate?token=%s", config.AppURL, token)

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Welcome to Inkwell</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0; color: #333;">
    <div style="max-width: 600px; margin: 40px auto; background-color: #ffffff; border-radius: 8px; overflow: hidden;">
        <div style="background-color: #1a73e8; padding: 20px; text-align: center; color: #ffffff;">
            <h1 style="margin: 0; font-size: 24px;">Welcome to Inkwell</h1>
        </div>
        <div style="padding: 30px;">
            <p>Hi %s,</p>
            <p>Thanks for signing up. Use the activation code below, or click the button, to activate your account. The code expires in 24 hours.</p>
            <p style="font-size: 28px; letter-spacing: 4px; text-align: center; font-weight: bold;">%d</p>
            <p style="text-align: center;">
                <a href="%s" style="display: inline-block; padding: 12px 24px; background-color: #1a73e8; color: #ffffff; text-decoration: none; border-radius: 4px;">Activate Account</a>
            </p>
            <p>If you did not create an account, you can safely ignore this email.</p>
        </div>
        <div style="padding: 16px; text-align: center; font-size: 12px; color: #999;">
            &copy; Inkwell. All rights reserved.
        </div>
    </div>
</body>
</html>`, username, otp, activationLink)

	m := gomail.NewMessage()
	m.SetHeader("From", config.FromEmail)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Activate your Inkwell account")
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUsername, config.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		log.Error(ctx).WithFields("error", err, "email", email).Logs("Failed to send activation email")
		return WrapError(err, ErrInternalServerError.Code, "Failed to send activation email")
	}

	log.Info(ctx).WithFields("email", email).Logs("Activation email sent")
	return nil
}
