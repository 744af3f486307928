package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/beautyhome/studio-api/internal/storage"
)

const bookingTemplate = `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #b1781d;">New Booking Received!</h1>
  <p><strong>Ref:</strong> {{.Reference}}</p>
  <div style="border: 1px solid #ddd; padding: 20px; border-radius: 8px; background: #fdf7ef;">
    <h3 style="margin-top: 0;">Customer Details</h3>
    <p><strong>Name:</strong> {{.Name}}</p>
    <p><strong>Phone:</strong> {{.Phone}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    <h3 style="margin-top: 20px;">Booking Details</h3>
    <p><strong>Package:</strong> {{.Package}}</p>
    <p><strong>Date:</strong> {{.Date}}</p>
    <p><strong>Time:</strong> {{.TimeWindow}}</p>
    <p><strong>Location:</strong> {{.City}}</p>
    <p><strong>Amount Due:</strong> {{.Amount}}</p>
    {{- if .Notes}}
    <p><strong>Notes:</strong><br>{{.Notes}}</p>
    {{- end}}
  </div>
  <p style="color: #666; font-size: 12px; margin-top: 20px;">
    This booking is currently <strong>Pending Payment</strong>. Please check your bank account for a transfer with reference <strong>{{.Reference}}</strong>.
  </p>
</div>`

var bookingTmpl = template.Must(template.New("booking").Parse(bookingTemplate))

type bookingData struct {
	Reference  string
	Name       string
	Phone      string
	Email      string
	Package    string
	Date       string
	TimeWindow string
	City       string
	Amount     string
	Notes      string
}

// currencySymbols covers the currencies the studio prices in.
var currencySymbols = map[string]string{
	"GBP": "£",
	"EUR": "€",
	"USD": "US$",
	"NGN": "NGN ",
}

var amountPrinter = message.NewPrinter(language.BritishEnglish)

// FormatAmount renders minor units as a British-English currency label,
// e.g. 12000 GBP -> "£120.00" and 1500000 NGN -> "NGN 15,000.00".
func FormatAmount(minor int64, currency string) string {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "" {
		code = "GBP"
	}
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code + " "
	}
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return sign + symbol + amountPrinter.Sprintf("%d", minor/100) + fmt.Sprintf(".%02d", minor%100)
}

// RenderBooking builds the subject and HTML body of a new-booking email.
func RenderBooking(b storage.Booking) (subject, html string, err error) {
	data := bookingData{
		Reference:  b.Reference,
		Name:       b.CustomerName,
		Phone:      b.CustomerPhone,
		Email:      "N/A",
		Package:    b.PackageName,
		Date:       b.AppointmentDate,
		TimeWindow: b.TimeWindow,
		City:       b.City,
		Amount:     FormatAmount(b.AmountPaid, b.Currency),
	}
	if b.CustomerEmail != nil && *b.CustomerEmail != "" {
		data.Email = *b.CustomerEmail
	}
	if b.Notes != nil {
		data.Notes = *b.Notes
	}

	var buf bytes.Buffer
	if err := bookingTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render booking email: %w", err)
	}
	subject = fmt.Sprintf("New Booking: %s (%s)", b.CustomerName, b.AppointmentDate)
	return subject, buf.String(), nil
}
