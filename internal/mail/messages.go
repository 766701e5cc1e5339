package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/librarium-app/librarium/internal/core"
)

var registrationNoticeTmpl = template.Must(template.New("registration_notice").Parse(`
<p>New registration request:</p>
<p><strong>Username:</strong> {{.Username}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<a href="{{.ApproveLink}}">&#9989; Approve</a> |
<a href="{{.RejectLink}}">&#10060; Reject</a>
`))

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Password Reset Request</h2>
  <p>You requested a password reset for your library account.</p>
  <p>Click the button below to reset your password:</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{.ResetLink}}" style="background: #667eea; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Reset Password</a>
  </div>
  <p>Or copy and paste this link in your browser:</p>
  <p style="word-break: break-all; color: #667eea;">{{.ResetLink}}</p>
  <p><strong>This link will expire in 1 hour.</strong></p>
  <p>If you didn't request this, please ignore this email.</p>
</div>
`))

// RegistrationNotice is the admin notification about a pending registration
// request, with one-click approve and reject links.
func RegistrationNotice(adminEmail string, request core.RegistrationRequest, baseURL string) (Message, error) {
	var body bytes.Buffer

	err := registrationNoticeTmpl.Execute(&body, struct {
		Username    string
		Email       string
		ApproveLink string
		RejectLink  string
	}{
		Username:    request.Username,
		Email:       request.Email,
		ApproveLink: fmt.Sprintf("%s/approve/%s", baseURL, request.ID),
		RejectLink:  fmt.Sprintf("%s/reject/%s", baseURL, request.ID),
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to execute template: %w", err)
	}

	return Message{
		To:      adminEmail,
		Subject: "New Registration Request",
		Body:    body.String(),
	}, nil
}

// ApprovalNotice tells the requester their account is live.
func ApprovalNotice(to core.EmailString) Message {
	return Message{
		To:      to,
		Subject: "Library Approval",
		Body:    "&#9989; Your account has been approved. You can now log in.",
	}
}

// RejectionNotice tells the requester their request was declined.
func RejectionNotice(to core.EmailString) Message {
	return Message{
		To:      to,
		Subject: "Library Rejection",
		Body:    "&#10060; Your account request has been rejected.",
	}
}

// PasswordResetNotice carries the one hour reset link.
func PasswordResetNotice(to core.EmailString, resetToken, baseURL string) (Message, error) {
	var body bytes.Buffer

	err := passwordResetTmpl.Execute(&body, struct {
		ResetLink string
	}{
		ResetLink: fmt.Sprintf("%s/reset-password/%s", baseURL, resetToken),
	})
	if err != nil {
		return Message{}, fmt.Errorf("failed to execute template: %w", err)
	}

	return Message{
		To:      to,
		Subject: "Password Reset Request",
		Body:    body.String(),
	}, nil
}
