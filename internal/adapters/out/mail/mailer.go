// internal/adapters/out/mail/mailer.go
package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"talentagency/internal/application/usecase"
	"talentagency/internal/domain/common"
	orderdom "talentagency/internal/domain/order"
	appdom "talentagency/internal/domain/serviceapp"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	tmplOrderMerchant   = "order_merchant"
	tmplOrderCustomer   = "order_customer"
	tmplContactMerchant = "contact_merchant"
	tmplContactReply    = "contact_autoreply"
	tmplAppMerchant     = "application_merchant"
	tmplAppReply        = "application_autoreply"
)

var ErrNoRecipient = errors.New("mail: recipient is empty")

// Mailer は usecase.OrderNotifier と usecase.InquiryNotifier の実装です。
// Merchant copies go to merchantEmail; customer copies go to the address the
// buyer or applicant entered.
type Mailer struct {
	client        EmailClient
	fromAddress   string
	fromName      string
	merchantEmail string
	tmpl          map[string]*template.Template
}

var (
	_ usecase.OrderNotifier   = (*Mailer)(nil)
	_ usecase.InquiryNotifier = (*Mailer)(nil)
)

func NewMailer(client EmailClient, fromAddress, fromName, merchantEmail string) (*Mailer, error) {
	set, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Mailer{
		client:        client,
		fromAddress:   strings.TrimSpace(fromAddress),
		fromName:      strings.TrimSpace(fromName),
		merchantEmail: strings.TrimSpace(merchantEmail),
		tmpl:          set,
	}, nil
}

func parseTemplates() (map[string]*template.Template, error) {
	base, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("mail: parse layout: %w", err)
	}
	out := map[string]*template.Template{}
	for _, name := range []string{
		tmplOrderMerchant, tmplOrderCustomer,
		tmplContactMerchant, tmplContactReply,
		tmplAppMerchant, tmplAppReply,
	} {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("mail: parse %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

// ========================
// views
// ========================

type header struct {
	Title string
	Brand string
}

type itemView struct {
	Name     string
	Quantity int
	Price    string
	Amount   string
}

type orderView struct {
	header
	OrderID   string
	Reference string
	Items     []itemView
	Subtotal  string
	Tax       string
	Total     string
	Delivery  orderdom.Delivery
}

type contactView struct {
	header
	usecase.ContactMessage
}

type applicationView struct {
	header
	appdom.Application
}

func (m *Mailer) head(title string) header {
	brand := m.fromName
	if brand == "" {
		brand = "Talent Agency"
	}
	return header{Title: title, Brand: brand}
}

func (m *Mailer) newOrderView(title string, o orderdom.Order) orderView {
	cur := o.Currency
	items := make([]itemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemView{
			Name:     it.Name,
			Quantity: it.Quantity,
			Price:    common.FormatMinor(it.Price, cur),
			Amount:   common.FormatMinor(it.Amount(), cur),
		})
	}
	return orderView{
		header:    m.head(title),
		OrderID:   o.ID,
		Reference: o.PaymentReference,
		Items:     items,
		Subtotal:  common.FormatMinor(o.Subtotal, cur),
		Tax:       common.FormatMinor(o.Tax, cur),
		Total:     common.FormatMinor(o.Total, cur),
		Delivery:  o.Delivery,
	}
}

func (m *Mailer) render(name string, data any) (string, error) {
	t, ok := m.tmpl[name]
	if !ok {
		return "", fmt.Errorf("mail: unknown template %s", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("mail: render %s: %w", name, err)
	}
	return buf.String(), nil
}

func (m *Mailer) send(ctx context.Context, to, toName, replyTo, subject, tmpl string, data any, text string) error {
	if strings.TrimSpace(to) == "" {
		return ErrNoRecipient
	}
	html, err := m.render(tmpl, data)
	if err != nil {
		return err
	}
	return m.client.Send(ctx, Message{
		FromName: m.fromName,
		From:     m.fromAddress,
		To:       to,
		ToName:   toName,
		ReplyTo:  replyTo,
		Subject:  subject,
		Text:     text,
		HTML:     html,
	})
}

// ========================
// OrderNotifier
// ========================

func (m *Mailer) NotifyMerchant(ctx context.Context, o orderdom.Order) error {
	subject := fmt.Sprintf("New order %s (%s)", o.ID, common.FormatMinor(o.Total, o.Currency))
	return m.send(ctx, m.merchantEmail, "", o.Delivery.Email, subject,
		tmplOrderMerchant, m.newOrderView("New order", o), orderText(o))
}

func (m *Mailer) NotifyCustomer(ctx context.Context, o orderdom.Order) error {
	subject := "Your order confirmation"
	if o.ID != "" {
		subject += " #" + o.ID
	}
	return m.send(ctx, o.Delivery.Email, o.Delivery.Name, "", subject,
		tmplOrderCustomer, m.newOrderView("Thank you for your order", o), orderText(o))
}

// ========================
// InquiryNotifier
// ========================

func (m *Mailer) NotifyContact(ctx context.Context, msg usecase.ContactMessage) error {
	subject := "Contact form: " + msg.Name
	if msg.Subject != "" {
		subject = "Contact form: " + msg.Subject
	}
	v := contactView{header: m.head("New contact message"), ContactMessage: msg}
	return m.send(ctx, m.merchantEmail, "", msg.Email, subject, tmplContactMerchant, v, msg.Message)
}

func (m *Mailer) AutoReplyContact(ctx context.Context, msg usecase.ContactMessage) error {
	v := contactView{header: m.head("We received your message"), ContactMessage: msg}
	return m.send(ctx, msg.Email, msg.Name, m.merchantEmail, "We received your message",
		tmplContactReply, v, "Thanks for reaching out. We will get back to you shortly.")
}

func (m *Mailer) NotifyApplication(ctx context.Context, a appdom.Application) error {
	subject := fmt.Sprintf("Service application: %s from %s", a.ServiceName, a.Name)
	v := applicationView{header: m.head("New service application"), Application: a}
	return m.send(ctx, m.merchantEmail, "", a.Email, subject, tmplAppMerchant, v, a.Message)
}

func (m *Mailer) AutoReplyApplication(ctx context.Context, a appdom.Application) error {
	v := applicationView{header: m.head("Application received"), Application: a}
	return m.send(ctx, a.Email, a.Name, m.merchantEmail, "We received your application: "+a.ServiceName,
		tmplAppReply, v, "We have received your application for "+a.ServiceName+".")
}

func orderText(o orderdom.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order %s\nPayment reference %s\n\n", o.ID, o.PaymentReference)
	for _, it := range o.Items {
		fmt.Fprintf(&b, "%s x%d  %s\n", it.Name, it.Quantity, common.FormatMinor(it.Amount(), o.Currency))
	}
	fmt.Fprintf(&b, "\nTotal %s\n", common.FormatMinor(o.Total, o.Currency))
	return b.String()
}
