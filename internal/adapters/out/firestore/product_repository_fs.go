// internal/adapters/out/firestore/product_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	productdom "talentagency/internal/domain/product"
)

// ProductRepositoryFS stores every kind in one "shop-products" collection, tagged
// by the kind field.
type ProductRepositoryFS struct {
	Client *firestore.Client
}

func NewProductRepositoryFS(client *firestore.Client) *ProductRepositoryFS {
	return &ProductRepositoryFS{Client: client}
}

func (r *ProductRepositoryFS) col() *firestore.CollectionRef {
	return r.Client.Collection("shop-products")
}

func (r *ProductRepositoryFS) GetByID(ctx context.Context, id string) (productdom.Product, error) {
	if r.Client == nil {
		return productdom.Product{}, errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.Product{}, productdom.ErrNotFound
	}

	snap, err := r.col().Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return productdom.Product{}, productdom.ErrNotFound
		}
		return productdom.Product{}, err
	}
	return docToProduct(snap), nil
}

// List filters kind server side; category and stock are matched in memory
// since category comparison is case-insensitive.
func (r *ProductRepositoryFS) List(ctx context.Context, f productdom.Filter) ([]productdom.Product, error) {
	if r.Client == nil {
		return nil, errNilClient
	}
	q := r.col().Query
	if f.Kind != "" {
		q = q.Where("kind", "==", string(f.Kind))
	}

	it := q.Documents(ctx)
	defer it.Stop()

	out := []productdom.Product{}
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		p := docToProduct(snap)
		if f.Match(p) {
			out = append(out, p)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *ProductRepositoryFS) Create(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	if r.Client == nil {
		return productdom.Product{}, errNilClient
	}
	docRef := r.col().NewDoc()
	if id := strings.TrimSpace(p.ID); id != "" {
		docRef = r.col().Doc(id)
	}
	p.ID = docRef.ID

	if _, err := docRef.Create(ctx, productToDoc(p)); err != nil {
		return productdom.Product{}, err
	}
	return p, nil
}

// Save overwrites the document; it must already exist.
func (r *ProductRepositoryFS) Save(ctx context.Context, p productdom.Product) (productdom.Product, error) {
	if r.Client == nil {
		return productdom.Product{}, errNilClient
	}
	id := strings.TrimSpace(p.ID)
	if id == "" {
		return productdom.Product{}, productdom.ErrInvalidID
	}
	data := productToDoc(p)
	ups := make([]firestore.Update, 0, len(data))
	for k, v := range data {
		ups = append(ups, firestore.Update{Path: k, Value: v})
	}
	if _, err := r.col().Doc(id).Update(ctx, ups); err != nil {
		if isNotFound(err) {
			return productdom.Product{}, productdom.ErrNotFound
		}
		return productdom.Product{}, err
	}
	return p, nil
}

func (r *ProductRepositoryFS) Delete(ctx context.Context, id string) error {
	if r.Client == nil {
		return errNilClient
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return productdom.ErrInvalidID
	}
	_, err := r.col().Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return productdom.ErrNotFound
	}
	return err
}

// Watch pushes the full catalog on every change until ctx is done.
func (r *ProductRepositoryFS) Watch(ctx context.Context, onChange func([]productdom.Product)) error {
	if r.Client == nil {
		return errNilClient
	}
	it := r.col().Snapshots(ctx)
	defer it.Stop()

	for {
		qs, err := it.Next()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		docs, err := qs.Documents.GetAll()
		if err != nil {
			return err
		}
		out := make([]productdom.Product, 0, len(docs))
		for _, d := range docs {
			out = append(out, docToProduct(d))
		}
		log.Printf("[product_repo_fs] snapshot products=%d changes=%d", len(out), len(qs.Changes))
		onChange(out)
	}
}

// ============================================================
// mapping
// ============================================================

func productToDoc(p productdom.Product) map[string]any {
	return map[string]any{
		"kind":        string(p.Kind),
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"imageUrl":    p.ImageURL,
		"inStock":     p.InStock,
		"category":    p.Category,
		"createdAt":   p.CreatedAt.UTC(),
		"updatedAt":   p.UpdatedAt.UTC(),
	}
}

// docToProduct reads raw data so older documents (price as string, no kind
// tag, "image" instead of "imageUrl") still decode.
func docToProduct(snap *firestore.DocumentSnapshot) productdom.Product {
	data := snap.Data()
	p := productdom.Product{
		ID:          snap.Ref.ID,
		Kind:        productdom.Kind(strings.ToLower(strings.TrimSpace(asString(data["kind"])))),
		Name:        strings.TrimSpace(asString(data["name"])),
		Description: asString(data["description"]),
		Price:       asInt(data["price"]),
		ImageURL:    strings.TrimSpace(asString(data["imageUrl"])),
		InStock:     asBool(data["inStock"], true),
		Category:    strings.TrimSpace(asString(data["category"])),
	}
	if p.ImageURL == "" {
		p.ImageURL = strings.TrimSpace(asString(data["image"]))
	}
	if t, ok := asTime(data["createdAt"]); ok {
		p.CreatedAt = t.UTC()
	} else {
		p.CreatedAt = snap.CreateTime.UTC()
	}
	if t, ok := asTime(data["updatedAt"]); ok {
		p.UpdatedAt = t.UTC()
	} else {
		p.UpdatedAt = snap.UpdateTime.UTC()
	}
	return p
}

func sortNewestFirst(ps []productdom.Product) {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].CreatedAt.After(ps[j].CreatedAt)
	})
}
