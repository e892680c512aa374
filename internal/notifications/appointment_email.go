package notifications

import (
	"bytes"
	"html/template"

	"github.com/swand-12/saloon-backend-admin/internal/models"
)

const appointmentAcceptedTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hello {{.Name}},</p>
  <p>Your appointment request has been accepted. Here are the details:</p>
  <ul>
    <li>Service: {{.Service}}</li>
    <li>Date: {{.Date}}</li>
    <li>Time: {{.Time}}</li>
    <li>Reference: {{.AppointmentID}}</li>
  </ul>
  <p>If you can no longer make it, please reply to this email.</p>
  <p>See you soon.</p>
</body>
</html>`

var appointmentAcceptedTmpl = template.Must(template.New("appointment_accepted").Parse(appointmentAcceptedTemplate))

type appointmentAcceptedData struct {
	Name          string
	Service       string
	Date          string
	Time          string
	AppointmentID string
}

func buildAppointmentAcceptedHTML(appointment models.Appointment) (string, error) {
	data := appointmentAcceptedData{
		Name:          appointment.Name,
		Service:       appointment.Service,
		Date:          appointment.Date,
		Time:          appointment.Time,
		AppointmentID: appointment.ID,
	}
	var buf bytes.Buffer
	if err := appointmentAcceptedTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
