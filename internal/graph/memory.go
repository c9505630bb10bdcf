// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package graph

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Fadikk367/lego-shop-server/internal/models"
	"github.com/Fadikk367/lego-shop-server/internal/recommend/algorithms"
)

// edge is a directed relationship. value carries RATES.value and PLACED.time.
type edge struct {
	id    int64
	from  int64
	to    int64
	value float64
}

// adjacency indexes edges of one relationship kind by endpoint.
type adjacency struct {
	out map[int64][]*edge
	in  map[int64][]*edge
}

func newAdjacency() *adjacency {
	return &adjacency{
		out: make(map[int64][]*edge),
		in:  make(map[int64][]*edge),
	}
}

func (a *adjacency) add(e *edge) {
	a.out[e.from] = append(a.out[e.from], e)
	a.in[e.to] = append(a.in[e.to], e)
}

func (a *adjacency) find(from, to int64) *edge {
	for _, e := range a.out[from] {
		if e.to == to {
			return e
		}
	}
	return nil
}

type memUser struct {
	models.User
	passwordHash string
}

type memProduct struct {
	id          int64
	name        string
	price       float64
	elements    int64
	minifigures int64
	imageURL    string
}

// MemoryStore is an in-process Store. Nodes live in per-kind maps keyed by
// id; relationships live in one adjacency index per relationship kind. Node
// ids come from a single counter, relationship ids from another, matching
// how the graph database numbers them.
type MemoryStore struct {
	mu sync.RWMutex

	nextNodeID int64
	nextRelID  int64

	users      map[int64]*memUser
	emails     map[string]int64
	categories map[int64]models.Category
	products   map[int64]*memProduct
	orders     map[int64]int64 // order id -> epoch millis

	rels map[string]*adjacency
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[int64]*memUser),
		emails:     make(map[string]int64),
		categories: make(map[int64]models.Category),
		products:   make(map[int64]*memProduct),
		orders:     make(map[int64]int64),
		rels: map[string]*adjacency{
			RelBelongsTo: newAdjacency(),
			RelPlaced:    newAdjacency(),
			RelContains:  newAdjacency(),
			RelRates:     newAdjacency(),
		},
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) nodeID() int64 {
	s.nextNodeID++
	return s.nextNodeID
}

func (s *MemoryStore) link(rel string, from, to int64, value float64) *edge {
	s.nextRelID++
	e := &edge{id: s.nextRelID, from: from, to: to, value: value}
	s.rels[rel].add(e)
	return e
}

// product projects a product node with its BELONGS_TO category name.
// Must be called with mu held.
func (s *MemoryStore) product(id int64) (models.Product, bool) {
	p, ok := s.products[id]
	if !ok {
		return models.Product{}, false
	}
	out := models.Product{
		ID:          p.id,
		Name:        p.name,
		Price:       p.price,
		Elements:    p.elements,
		Minifigures: p.minifigures,
		ImageURL:    p.imageURL,
	}
	if edges := s.rels[RelBelongsTo].out[id]; len(edges) > 0 {
		out.Category = s.categories[edges[0].to].Name
	}
	return out, true
}

func (s *MemoryStore) productsByID(ids []int64) []models.Product {
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.product(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// ratings flattens every RATES edge. Must be called with mu held.
func (s *MemoryStore) ratings() []models.Rating {
	var out []models.Rating
	for _, edges := range s.rels[RelRates].out {
		for _, e := range edges {
			out = append(out, models.Rating{UserID: e.from, ProductID: e.to, Value: e.value})
		}
	}
	return out
}

func (s *MemoryStore) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	if err := ctx.Err(); err != nil {
		return models.Category{}, ctxError("create category", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c := models.Category{ID: s.nodeID(), Name: name}
	s.categories[c.ID] = c
	return c, nil
}

func (s *MemoryStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, ctxError("list categories", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error) {
	if err := ctx.Err(); err != nil {
		return models.Product{}, ctxError("create product", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[in.CategoryID]; !ok {
		return models.Product{}, constraintViolation("create product", models.KindCategory, in.CategoryID)
	}

	p := &memProduct{
		id:          s.nodeID(),
		name:        in.Name,
		price:       in.Price,
		elements:    in.Elements,
		minifigures: in.Minifigures,
		imageURL:    in.ImageURL,
	}
	s.products[p.id] = p
	s.link(RelBelongsTo, p.id, in.CategoryID, 0)

	out, _ := s.product(p.id)
	return out, nil
}

func (s *MemoryStore) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	if err := ctx.Err(); err != nil {
		return models.Product{}, ctxError("get product", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.product(id)
	if !ok {
		return models.Product{}, notFound("get product", models.KindProduct, id)
	}
	return p, nil
}

func (s *MemoryStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, ctxError("list products", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.products))
	for id := range s.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return s.productsByID(ids), nil
}

func (s *MemoryStore) RateProduct(ctx context.Context, productID, userID int64, value float64) (models.RatingAck, error) {
	if err := ctx.Err(); err != nil {
		return models.RatingAck{}, ctxError("rate product", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[productID]; !ok {
		return models.RatingAck{}, notFound("rate product", models.KindProduct, productID)
	}
	if _, ok := s.users[userID]; !ok {
		return models.RatingAck{}, notFound("rate product", models.KindUser, userID)
	}

	e := s.rels[RelRates].find(userID, productID)
	if e == nil {
		e = s.link(RelRates, userID, productID, value)
	}
	e.value = value

	return models.RatingAck{ID: e.id, Value: e.value}, nil
}

func (s *MemoryStore) TopRatedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked, err := algorithms.TopRated(ctx, s.ratings(), limit)
	if err != nil {
		return nil, ctxError("top rated products", err)
	}
	return s.productsByID(algorithms.IDs(ranked)), nil
}

func (s *MemoryStore) AlsoBoughtWith(ctx context.Context, productID int64, limit int) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Only the seed's orders matter: walk Product <-CONTAINS- Order -CONTAINS-> Product.
	contains := s.rels[RelContains]
	var baskets [][]int64
	for _, in := range contains.in[productID] {
		basket := make([]int64, 0, len(contains.out[in.from]))
		for _, out := range contains.out[in.from] {
			basket = append(basket, out.to)
		}
		baskets = append(baskets, basket)
	}

	ranked, err := algorithms.CoPurchased(ctx, baskets, productID, limit)
	if err != nil {
		return nil, ctxError("also bought with", err)
	}
	return s.productsByID(algorithms.IDs(ranked)), nil
}

func (s *MemoryStore) RecommendedFor(ctx context.Context, userID int64, params RecommendParams) ([]models.Product, error) {
	params = params.withDefaults()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked, err := algorithms.UserBasedCF(ctx, s.ratings(), userID, algorithms.KNNConfig{
		K:              params.Neighbors,
		MinCommonItems: params.MinShared,
		Limit:          params.Limit,
	})
	if err != nil {
		return nil, ctxError("recommended for", err)
	}
	return s.productsByID(algorithms.IDs(ranked)), nil
}

// PlaceOrder validates every reference before mutating anything, so a bad id
// leaves no Order node and no edges behind.
func (s *MemoryStore) PlaceOrder(ctx context.Context, userID int64, productIDs []int64, at time.Time) (models.PlacedOrder, error) {
	if err := ctx.Err(); err != nil {
		return models.PlacedOrder{}, ctxError("place order", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return models.PlacedOrder{}, constraintViolation("place order", models.KindUser, userID)
	}
	for _, id := range productIDs {
		if _, ok := s.products[id]; !ok {
			return models.PlacedOrder{}, constraintViolation("place order", models.KindProduct, id)
		}
	}

	ts := epochMillis(at)
	orderID := s.nodeID()
	s.orders[orderID] = ts
	s.link(RelPlaced, userID, orderID, float64(ts))

	order := models.PlacedOrder{ID: orderID, Time: ts, Products: make([]models.OrderedProduct, 0, len(productIDs))}
	for _, id := range productIDs {
		s.link(RelContains, orderID, id, 0)
		p, _ := s.product(id)
		order.Products = append(order.Products, models.OrderedProduct{Product: p})
	}
	return order, nil
}

func (s *MemoryStore) OrderHistory(ctx context.Context, userID int64) ([]models.PlacedOrder, error) {
	if err := ctx.Err(); err != nil {
		return nil, ctxError("order history", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rates := s.rels[RelRates]
	history := make([]models.PlacedOrder, 0)
	for _, placed := range s.rels[RelPlaced].out[userID] {
		order := models.PlacedOrder{ID: placed.to, Time: s.orders[placed.to]}
		for _, c := range s.rels[RelContains].out[placed.to] {
			p, ok := s.product(c.to)
			if !ok {
				continue
			}
			item := models.OrderedProduct{Product: p}
			if r := rates.find(userID, c.to); r != nil {
				v := r.value
				item.Rating = &v
			}
			order.Products = append(order.Products, item)
		}
		sort.Slice(order.Products, func(i, j int) bool { return order.Products[i].ID < order.Products[j].ID })
		history = append(history, order)
	}

	sort.Slice(history, func(i, j int) bool {
		if history[i].Time != history[j].Time {
			return history[i].Time > history[j].Time
		}
		return history[i].ID > history[j].ID
	})
	return history, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	if err := ctx.Err(); err != nil {
		return models.User{}, ctxError("create user", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := s.emails[key]; exists {
		return models.User{}, opError("create user", ErrConflict)
	}

	u := &memUser{User: models.User{ID: s.nodeID(), Name: name, Email: email}, passwordHash: passwordHash}
	s.users[u.ID] = u
	s.emails[key] = u.ID
	return u.User, nil
}

func (s *MemoryStore) UserByEmail(ctx context.Context, email string) (models.UserAccount, error) {
	if err := ctx.Err(); err != nil {
		return models.UserAccount{}, ctxError("user by email", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return models.UserAccount{}, opError("user by email", ErrNotFound)
	}
	u := s.users[id]
	return models.UserAccount{User: u.User, PasswordHash: u.passwordHash}, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return ctxError("ping", err)
	}
	return nil
}

func (s *MemoryStore) Close(context.Context) error { return nil }

// Counts reports the number of nodes of each kind and edges of each
// relationship kind. Tests use it to assert that failed writes left nothing.
func (s *MemoryStore) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[string]int{
		string(models.KindUser):     len(s.users),
		string(models.KindCategory): len(s.categories),
		string(models.KindProduct):  len(s.products),
		string(models.KindOrder):    len(s.orders),
	}
	for rel, adj := range s.rels {
		n := 0
		for _, edges := range adj.out {
			n += len(edges)
		}
		counts[rel] = n
	}
	return counts
}
