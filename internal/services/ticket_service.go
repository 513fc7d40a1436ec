package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/collegetransit/bus-pass-backend/internal/database"
	"github.com/collegetransit/bus-pass-backend/internal/models"
)

// BusLookup resolves a route code to its bus
type BusLookup interface {
	GetByRouteCode(ctx context.Context, routeCode string) (*models.Bus, error)
}

// TicketService renders a downloadable bus-pass PDF for a booking
type TicketService struct {
	bookings BookingStore
	buses    BusLookup
	settings SettingsStore
	timeout  time.Duration
}

// NewTicketService creates a new TicketService
func NewTicketService(bookings BookingStore, buses BusLookup, settings SettingsStore, timeout time.Duration) *TicketService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TicketService{bookings: bookings, buses: buses, settings: settings, timeout: timeout}
}

// GeneratePass renders the bus pass for the booking as PDF bytes and
// returns a suggested file name.
func (s *TicketService) GeneratePass(ctx context.Context, bookingID string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, "", err
	}

	busName := booking.BusRoute
	if bus, err := s.buses.GetByRouteCode(ctx, booking.BusRoute); err == nil {
		busName = fmt.Sprintf("%s (%s)", bus.Name, bus.RouteCode)
	}

	goDate, returnDate := "-", "-"
	if settings, err := s.settings.Get(ctx); err == nil {
		if settings.GoDate != nil {
			goDate = settings.GoDate.Format(travelDateLayout)
		}
		if settings.ReturnDate != nil {
			returnDate = settings.ReturnDate.Format(travelDateLayout)
		}
	}

	pdfBytes, err := buildPassPDF(booking, busName, goDate, returnDate)
	if err != nil {
		return nil, "", err
	}

	fileName := fmt.Sprintf("bus-pass-%s.pdf", booking.AdmissionNumber)
	return pdfBytes, fileName, nil
}

func buildPassPDF(b *models.Booking, busName, goDate, returnDate string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("College Bus Pass", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "COLLEGE BUS PASS")
	pdf.Ln(14)

	paymentState := "Pay at college"
	if b.PaymentStatus {
		paymentState = "Paid online"
	}

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Student        : %s", safe(b.StudentName)),
		fmt.Sprintf("Admission No   : %s", strings.ToUpper(b.AdmissionNumber)),
		fmt.Sprintf("Bus            : %s", safe(busName)),
		fmt.Sprintf("Destination    : %s", safe(b.Destination)),
		fmt.Sprintf("Journey Date   : %s", goDate),
		fmt.Sprintf("Return Date    : %s", returnDate),
		fmt.Sprintf("Payment        : %s", paymentState),
		fmt.Sprintf("Booked At      : %s", b.CreatedAt.Format("2006-01-02 15:04")),
	}
	for _, line := range lines {
		pdf.Cell(0, 8, line)
		pdf.Ln(8)
	}

	// QR encodes the booking id so gate staff can look the booking up
	qrPNG, err := qrcode.Encode(b.ID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("booking-qr", opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("booking-qr", 150, 30, 40, 40, false, opts, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, fmt.Sprintf("Booking reference: %s", b.ID))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pass PDF: %w", err)
	}

	return buf.Bytes(), nil
}

func safe(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

var _ BusLookup = (*database.BusRepository)(nil)
