// LEGO Shop Server - Graph-backed catalog, orders and recommendations
// Copyright 2026 Fadikk367
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Fadikk367/lego-shop-server

package graph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"

	"github.com/Fadikk367/lego-shop-server/internal/logging"
	"github.com/Fadikk367/lego-shop-server/internal/models"
)

const codeConstraintValidation = "Neo.ClientError.Schema.ConstraintValidationFailed"

// Neo4jConfig configures the Neo4j-backed store.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string

	// QueryTimeout bounds every store call, session acquisition included.
	QueryTimeout time.Duration

	MaxConnectionPoolSize int
	ConnectTimeout        time.Duration
}

// Neo4jStore implements Store on a Neo4j server. The driver's connection pool
// is shared; sessions are not. Each call opens a session, runs one managed
// transaction and closes the session before returning.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	cfg    Neo4jConfig
	logger zerolog.Logger
}

var _ Store = (*Neo4jStore)(nil)

// NewNeo4jStore creates the driver and verifies connectivity. The driver is
// closed again when the server cannot be reached.
func NewNeo4jStore(ctx context.Context, cfg Neo4jConfig) (*Neo4jStore, error) {
	if cfg.URI == "" {
		return nil, errors.New("neo4j: URI is required")
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 10 * time.Second
	}

	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		if cfg.MaxConnectionPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
		}
		if cfg.ConnectTimeout > 0 {
			c.SocketConnectTimeout = cfg.ConnectTimeout
		}
		c.ConnectionAcquisitionTimeout = cfg.QueryTimeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: failed to create driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, cfg.QueryTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: failed to connect to %s: %w", cfg.URI, ErrStoreUnavailable)
	}

	return &Neo4jStore{
		driver: driver,
		cfg:    cfg,
		logger: logging.WithComponent("graph"),
	}, nil
}

// EnsureSchema creates the email uniqueness constraint and lookup indexes.
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		_, err := runWrite(ctx, s, "ensure schema", func(ctx context.Context, tx neo4j.ManagedTransaction) (struct{}, error) {
			_, err := collect(ctx, tx, stmt, nil)
			return struct{}{}, err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Close releases the driver's connection pool.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

type txWork[T any] func(ctx context.Context, tx neo4j.ManagedTransaction) (T, error)

func runRead[T any](ctx context.Context, s *Neo4jStore, op string, work txWork[T]) (T, error) {
	return run(ctx, s, op, neo4j.AccessModeRead, work)
}

func runWrite[T any](ctx context.Context, s *Neo4jStore, op string, work txWork[T]) (T, error) {
	return run(ctx, s, op, neo4j.AccessModeWrite, work)
}

// run executes work in its own session and managed transaction. The
// transaction commits only when work returns nil; any error rolls it back.
func run[T any](ctx context.Context, s *Neo4jStore, op string, mode neo4j.AccessMode, work txWork[T]) (T, error) {
	var zero T

	ctx, cancel := context.WithTimeout(ctx, s.cfg.QueryTimeout)
	defer cancel()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.cfg.Database,
	})
	defer func() {
		if err := session.Close(context.WithoutCancel(ctx)); err != nil {
			s.logger.Debug().Err(err).Str("op", op).Msg("session close failed")
		}
	}()

	fn := func(tx neo4j.ManagedTransaction) (any, error) {
		return work(ctx, tx)
	}

	var (
		result any
		err    error
	)
	if mode == neo4j.AccessModeRead {
		result, err = session.ExecuteRead(ctx, fn, neo4j.WithTxTimeout(s.cfg.QueryTimeout))
	} else {
		result, err = session.ExecuteWrite(ctx, fn, neo4j.WithTxTimeout(s.cfg.QueryTimeout))
	}
	if err != nil {
		return zero, s.classify(ctx, op, err)
	}
	if result == nil {
		return zero, nil
	}

	typed, ok := result.(T)
	if !ok {
		return zero, opError(op, ErrQueryFailed)
	}
	return typed, nil
}

// classify converts a driver error into one of the package kinds. The raw
// error is logged at debug level and dropped.
func (s *Neo4jStore) classify(ctx context.Context, op string, err error) error {
	if isDomainError(err) {
		return err
	}

	if cause := ctx.Err(); cause != nil || isContextError(err) {
		if cause == nil {
			cause = err
		}
		s.logger.Debug().Err(err).Str("op", op).Str("kind", ErrorKind(ErrStoreUnavailable)).Msg("graph store call abandoned")
		return ctxError(op, cause)
	}

	kind := ErrQueryFailed
	var n4 *neo4j.Neo4jError
	switch {
	case neo4j.IsConnectivityError(err) || neo4j.IsTransactionExecutionLimit(err):
		kind = ErrStoreUnavailable
	case errors.As(err, &n4):
		switch {
		case n4.Code == codeConstraintValidation:
			kind = ErrConflict
		case strings.HasPrefix(n4.Code, "Neo.TransientError."):
			kind = ErrStoreUnavailable
		}
	}

	s.logger.Debug().Err(err).Str("op", op).Str("kind", ErrorKind(kind)).Msg("graph store call failed")
	return opError(op, kind)
}

// collect runs one statement and maps every record to fields.
func collect(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) ([]fields, error) {
	result, err := tx.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]fields, len(records))
	for i, rec := range records {
		rows[i] = fields(rec.AsMap())
	}
	return rows, nil
}

func nodeExists(ctx context.Context, tx neo4j.ManagedTransaction, kind models.Kind, id int64) (bool, error) {
	rows, err := collect(ctx, tx, cypherNodeExists, map[string]any{"id": id, "label": string(kind)})
	if err != nil {
		return false, err
	}
	if len(rows) != 1 {
		return false, nil
	}
	n, err := rows[0].Int64("found")
	return n > 0, err
}

func (s *Neo4jStore) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	return runWrite(ctx, s, "create category", func(ctx context.Context, tx neo4j.ManagedTransaction) (models.Category, error) {
		rows, err := collect(ctx, tx, cypherCreateCategory, map[string]any{"name": name})
		if err != nil {
			return models.Category{}, err
		}
		if len(rows) != 1 {
			return models.Category{}, opError("create category", ErrQueryFailed)
		}
		return rows[0].toCategory()
	})
}

func (s *Neo4jStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	return runRead(ctx, s, "list categories", func(ctx context.Context, tx neo4j.ManagedTransaction) ([]models.Category, error) {
		rows, err := collect(ctx, tx, cypherListCategories, nil)
		if err != nil {
			return nil, err
		}
		return mapRows(rows, fields.toCategory)
	})
}

func (s *Neo4jStore) CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error) {
	const op = "create product"
	return runWrite(ctx, s, op, func(ctx context.Context, tx neo4j.ManagedTransaction) (models.Product, error) {
		rows, err := collect(ctx, tx, cypherCreateProduct, map[string]any{
			"categoryId":  in.CategoryID,
			"name":        in.Name,
			"price":       in.Price,
			"elements":    in.Elements,
			"minifigures": in.Minifigures,
			"imageUrl":    in.ImageURL,
		})
		if err != nil {
			return models.Product{}, err
		}
		if len(rows) == 0 {
			return models.Product{}, constraintViolation(op, models.KindCategory, in.CategoryID)
		}
		return rows[0].toProduct()
	})
}

func (s *Neo4jStore) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	const op = "get product"
	return runRead(ctx, s, op, func(ctx context.Context, tx neo4j.ManagedTransaction) (models.Product, error) {
		rows, err := collect(ctx, tx, cypherGetProduct, map[string]any{"productId": id})
		if err != nil {
			return models.Product{}, err
		}
		if len(rows) == 0 {
			return models.Product{}, notFound(op, models.KindProduct, id)
		}
		return rows[0].toProduct()
	})
}

func (s *Neo4jStore) ListProducts(ctx context.Context) ([]models.Product, error) {
	return runRead(ctx, s, "list products", func(ctx context.Context, tx neo4j.ManagedTransaction) ([]models.Product, error) {
		rows, err := collect(ctx, tx, cypherListProducts, nil)
		if err != nil {
			return nil, err
		}
		return mapRows(rows, fields.toProduct)
	})
}

func (s *Neo4jStore) RateProduct(ctx context.Context, productID, userID int64, value float64) (models.RatingAck, error) {
	const op = "rate product"
	return runWrite(ctx, s, op, func(ctx context.Context, tx neo4j.ManagedTransaction) (models.RatingAck, error) {
		rows, err := collect(ctx, tx, cypherRateProduct, map[string]any{
			"productId": productID,
			"userId":    userID,
			"value":     value,
		})
		if err != nil {
			return models.RatingAck{}, err
		}
		if len(rows) == 0 {
			ok, err := nodeExists(ctx, tx, models.KindProduct, productID)
			if err != nil {
				return models.RatingAck{}, err
			}
			if !ok {
				return models.RatingAck{}, notFound(op, models.KindProduct, productID)
			}
			return models.RatingAck{}, notFound(op, models.KindUser, userID)
		}

		id, err := rows[0].Int64("id")
		if err != nil {
			return models.RatingAck{}, err
		}
		v, err := rows[0].Float("value")
		if err != nil {
			return models.RatingAck{}, err
		}
		return models.RatingAck{ID: id, Value: v}, nil
	})
}

func (s *Neo4jStore) TopRatedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	return runRead(ctx, s, "top rated products", func(ctx context.Context, tx neo4j.ManagedTransaction) ([]models.Product, error) {
		rows, err := collect(ctx, tx, cypherTopRated, map[string]any{"limit": int64(limit)})
		if err != nil {
			return nil, err
		}
		return mapRows(rows, fields.toProduct)
	})
}

func (s *Neo4jStore) AlsoBoughtWith(ctx context.Context, productID int64, limit int) ([]models.Product, error) {
	return runRead(ctx, s, "also bought with", func(ctx context.Context, tx neo4j.ManagedTransaction) ([]models.Product, error) {
		rows, err := collect(ctx, tx, cypherAlsoBought, map[string]any{
			"productId": productID,
			"limit":     int64(limit),
		})
		if err != nil {
			return nil, err
		}
		return mapRows(rows, fields.toProduct)
	})
}

func (s *Neo4jStore) RecommendedFor(ctx context.Context, userID int64, params RecommendParams) ([]models.Product, error) {
	params = params.withDefaults()
	return runRead(ctx, s, "recommended for", func(ctx context.Context, tx neo4j.ManagedTransaction) ([]models.Product, error) {
		rows, err := collect(ctx, tx, cypherRecommendedFor, map[string]any{
			"userId":    userID,
			"minShared": int64(params.MinShared),
			"neighbors": int64(params.Neighbors),
			"limit":     int64(params.Limit),
		})
		if err != nil {
			return nil, err
		}
		return mapRows(rows, fields.toProduct)
	})
}

// PlaceOrder resolves the user and every product, then creates the order and
// its edges, all inside one write transaction. A missing reference aborts the
// transaction before anything is created.
func (s *Neo4jStore) PlaceOrder(ctx context.Context, userID int64, productIDs []int64, at time.Time) (models.PlacedOrder, error) {
	const op = "place order"
	if len(productIDs) == 0 {
		return models.PlacedOrder{}, opError(op, ErrConstraintViolation)
	}
	ts := epochMillis(at)

	return runWrite(ctx, s, op, func(ctx context.Context, tx neo4j.ManagedTransaction) (models.PlacedOrder, error) {
		rows, err := collect(ctx, tx, cypherResolveOrder, map[string]any{
			"userId":     userID,
			"productIds": productIDs,
		})
		if err != nil {
			return models.PlacedOrder{}, err
		}
		if len(rows) != 1 {
			return models.PlacedOrder{}, opError(op, ErrQueryFailed)
		}
		users, err := rows[0].Int64("users")
		if err != nil {
			return models.PlacedOrder{}, err
		}
		if users == 0 {
			return models.PlacedOrder{}, constraintViolation(op, models.KindUser, userID)
		}
		found, err := rows[0].Int64s("found")
		if err != nil {
			return models.PlacedOrder{}, err
		}
		if missing, ok := firstMissing(productIDs, found); ok {
			return models.PlacedOrder{}, constraintViolation(op, models.KindProduct, missing)
		}

		rows, err = collect(ctx, tx, cypherPlaceOrder, map[string]any{
			"userId":     userID,
			"productIds": productIDs,
			"time":       ts,
		})
		if err != nil {
			return models.PlacedOrder{}, err
		}
		if len(rows) != 1 {
			return models.PlacedOrder{}, opError(op, ErrQueryFailed)
		}
		orderID, err := rows[0].Int64("id")
		if err != nil {
			return models.PlacedOrder{}, err
		}
		if linked, err := rows[0].Int64("linked"); err != nil || linked != int64(len(productIDs)) {
			return models.PlacedOrder{}, opError(op, ErrQueryFailed)
		}

		rows, err = collect(ctx, tx, cypherProductsByID, map[string]any{"productIds": productIDs})
		if err != nil {
			return models.PlacedOrder{}, err
		}
		products, err := mapRows(rows, fields.toProduct)
		if err != nil {
			return models.PlacedOrder{}, err
		}

		order := models.PlacedOrder{ID: orderID, Time: ts, Products: make([]models.OrderedProduct, len(products))}
		for i, p := range products {
			order.Products[i] = models.OrderedProduct{Product: p}
		}
		return order, nil
	})
}

func firstMissing(want, found []int64) (int64, bool) {
	have := make(map[int64]struct{}, len(found))
	for _, id := range found {
		have[id] = struct{}{}
	}
	for _, id := range want {
		if _, ok := have[id]; !ok {
			return id, true
		}
	}
	return 0, false
}

func (s *Neo4jStore) OrderHistory(ctx context.Context, userID int64) ([]models.PlacedOrder, error) {
	return runRead(ctx, s, "order history", func(ctx context.Context, tx neo4j.ManagedTransaction) ([]models.PlacedOrder, error) {
		rows, err := collect(ctx, tx, cypherOrderHistory, map[string]any{"userId": userID})
		if err != nil {
			return nil, err
		}
		return mapRows(rows, fields.toPlacedOrder)
	})
}

func (s *Neo4jStore) CreateUser(ctx context.Context, name, email, passwordHash string) (models.User, error) {
	const op = "create user"
	return runWrite(ctx, s, op, func(ctx context.Context, tx neo4j.ManagedTransaction) (models.User, error) {
		rows, err := collect(ctx, tx, cypherEmailTaken, map[string]any{"email": email})
		if err != nil {
			return models.User{}, err
		}
		if len(rows) == 1 {
			if taken, err := rows[0].Int64("taken"); err != nil {
				return models.User{}, err
			} else if taken > 0 {
				return models.User{}, opError(op, ErrConflict)
			}
		}

		rows, err = collect(ctx, tx, cypherCreateUser, map[string]any{
			"name":     name,
			"email":    email,
			"password": passwordHash,
		})
		if err != nil {
			return models.User{}, err
		}
		if len(rows) != 1 {
			return models.User{}, opError(op, ErrQueryFailed)
		}
		return rows[0].toUser()
	})
}

func (s *Neo4jStore) UserByEmail(ctx context.Context, email string) (models.UserAccount, error) {
	const op = "user by email"
	return runRead(ctx, s, op, func(ctx context.Context, tx neo4j.ManagedTransaction) (models.UserAccount, error) {
		rows, err := collect(ctx, tx, cypherUserByEmail, map[string]any{"email": email})
		if err != nil {
			return models.UserAccount{}, err
		}
		if len(rows) == 0 {
			return models.UserAccount{}, opError(op, ErrNotFound)
		}
		u, err := rows[0].toUser()
		if err != nil {
			return models.UserAccount{}, err
		}
		hash, err := rows[0].String("password")
		if err != nil {
			return models.UserAccount{}, err
		}
		return models.UserAccount{User: u, PasswordHash: hash}, nil
	})
}

func (s *Neo4jStore) Ping(ctx context.Context) error {
	_, err := runRead(ctx, s, "ping", func(ctx context.Context, tx neo4j.ManagedTransaction) (struct{}, error) {
		_, err := collect(ctx, tx, cypherPing, nil)
		return struct{}{}, err
	})
	return err
}
