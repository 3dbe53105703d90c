// internal/adapters/out/firestore/order_mapper_fs.go
package firestore

import (
	"strings"
	"time"

	orderdom "talentagency/internal/domain/order"
	productdom "talentagency/internal/domain/product"
)

// Firestore DTOs shared by orders and checkout intents.

type lineItemDoc struct {
	ProductID string `firestore:"productId"`
	Kind      string `firestore:"kind"`
	Name      string `firestore:"name"`
	Price     int    `firestore:"price"`
	Quantity  int    `firestore:"quantity"`
	ImageURL  string `firestore:"imageUrl,omitempty"`
}

type deliveryDoc struct {
	Name    string `firestore:"name"`
	Email   string `firestore:"email"`
	Phone   string `firestore:"phone"`
	Address string `firestore:"address"`
	City    string `firestore:"city"`
	State   string `firestore:"state"`
}

type statusChangeDoc struct {
	From string    `firestore:"from"`
	To   string    `firestore:"to"`
	By   string    `firestore:"by"`
	At   time.Time `firestore:"at"`
}

type orderDoc struct {
	UserID           string            `firestore:"userId"`
	Items            []lineItemDoc     `firestore:"items"`
	Delivery         deliveryDoc       `firestore:"delivery"`
	Subtotal         int               `firestore:"subtotal"`
	Tax              int               `firestore:"tax"`
	Total            int               `firestore:"total"`
	Currency         string            `firestore:"currency"`
	Status           string            `firestore:"status"`
	PaymentReference string            `firestore:"paymentReference"`
	StatusHistory    []statusChangeDoc `firestore:"statusHistory"`
	CreatedAt        time.Time         `firestore:"createdAt"`
	UpdatedAt        time.Time         `firestore:"updatedAt"`
}

func lineItemsToDoc(items []orderdom.LineItem) []lineItemDoc {
	out := make([]lineItemDoc, 0, len(items))
	for _, it := range items {
		out = append(out, lineItemDoc{
			ProductID: it.ProductID,
			Kind:      string(it.Kind),
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
		})
	}
	return out
}

func lineItemsFromDoc(items []lineItemDoc) []orderdom.LineItem {
	out := make([]orderdom.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, orderdom.LineItem{
			ProductID: it.ProductID,
			Kind:      productdom.Kind(it.Kind),
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
		})
	}
	return out
}

func deliveryToDoc(d orderdom.Delivery) deliveryDoc {
	return deliveryDoc(d)
}

func deliveryFromDoc(d deliveryDoc) orderdom.Delivery {
	return orderdom.Delivery(d)
}

func orderToDoc(o orderdom.Order) orderDoc {
	hist := make([]statusChangeDoc, 0, len(o.StatusHistory))
	for _, h := range o.StatusHistory {
		hist = append(hist, statusChangeDoc{From: string(h.From), To: string(h.To), By: h.By, At: h.At.UTC()})
	}
	return orderDoc{
		UserID:           o.UserID,
		Items:            lineItemsToDoc(o.Items),
		Delivery:         deliveryToDoc(o.Delivery),
		Subtotal:         o.Subtotal,
		Tax:              o.Tax,
		Total:            o.Total,
		Currency:         o.Currency,
		Status:           string(o.Status),
		PaymentReference: o.PaymentReference,
		StatusHistory:    hist,
		CreatedAt:        o.CreatedAt.UTC(),
		UpdatedAt:        o.UpdatedAt.UTC(),
	}
}

func orderFromDoc(id string, d orderDoc) orderdom.Order {
	hist := make([]orderdom.StatusChange, 0, len(d.StatusHistory))
	for _, h := range d.StatusHistory {
		hist = append(hist, orderdom.StatusChange{
			From: orderdom.Status(h.From),
			To:   orderdom.Status(h.To),
			By:   h.By,
			At:   h.At.UTC(),
		})
	}
	st := orderdom.Status(strings.ToLower(strings.TrimSpace(d.Status)))
	if !st.Valid() {
		st = orderdom.StatusPending
	}
	return orderdom.Order{
		ID:               id,
		UserID:           d.UserID,
		Items:            lineItemsFromDoc(d.Items),
		Delivery:         deliveryFromDoc(d.Delivery),
		Subtotal:         d.Subtotal,
		Tax:              d.Tax,
		Total:            d.Total,
		Currency:         d.Currency,
		Status:           st,
		PaymentReference: d.PaymentReference,
		StatusHistory:    hist,
		CreatedAt:        d.CreatedAt.UTC(),
		UpdatedAt:        d.UpdatedAt.UTC(),
	}
}
