package email

import (
	"fmt"
	"net/smtp"
)

// Service handles email sending via SMTP
type Service struct {
	host string
	port string
	from string
}

func NewService(host, port, from string) *Service {
	return &Service{
		host: host,
		port: port,
		from: from,
	}
}

// SendShipmentNotice tells the buyer their paid order is on its way
func (s *Service) SendShipmentNotice(to, orderID string, totalCents int64, lines []OrderLine) error {
	subject := fmt.Sprintf("Your order %s has shipped", shortID(orderID))
	body := BuildShipmentNoticeBody(orderID, totalCents, lines)
	return s.send(to, subject, body)
}

// SendCancellationNotice tells the buyer their order was cancelled
func (s *Service) SendCancellationNotice(to, orderID, reason string) error {
	subject := fmt.Sprintf("Your order %s was cancelled", shortID(orderID))
	body := BuildCancellationNoticeBody(orderID, reason)
	return s.send(to, subject, body)
}

func shortID(orderID string) string {
	if len(orderID) > 8 {
		return orderID[:8]
	}
	return orderID
}

func (s *Service) send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, nil, s.from, []string{to}, []byte(msg))
}
