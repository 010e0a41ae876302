package mailer

import "strings"

const inviteTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <p>Hi {{name}},</p>
  <p>You have been invited to take the test <strong>{{testName}}</strong>.</p>
  <p>
    <a href="{{link}}" style="background: #2563eb; color: #fff; padding: 10px 18px; border-radius: 6px; text-decoration: none;">
      Open your test
    </a>
  </p>
  <p>This link can be used exactly once and stops working on <strong>{{deadline}}</strong>.</p>
  <p>If the button does not work, copy this address into your browser:<br>{{link}}</p>
  <p>Good luck!</p>
</body>
</html>`

const otpTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <p>Hi {{name}},</p>
  <p>Your verification code is:</p>
  <p style="font-size: 28px; letter-spacing: 6px; font-weight: bold;">{{code}}</p>
  <p>The code expires in 10 minutes. If you did not request it, ignore this email.</p>
</body>
</html>`

// renderTemplate substitutes {{key}} placeholders. The templates are
// static HTML owned by this package, not user input.
func renderTemplate(tpl string, vars map[string]string) string {
	out := tpl
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}
