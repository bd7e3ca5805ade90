// Command seed-db populates a PostgreSQL database with the embedded
// development catalog and an API key, so the api-server is usable right
// after first deployment.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/almasdimas/shop-api/db"
	"github.com/almasdimas/shop-api/internal/domain/auth"
	"github.com/almasdimas/shop-api/internal/repository"
)

type productJSON struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Category      string          `json:"category"`
	Images        []string        `json:"images"`
	Rating        decimal.Decimal `json:"rating"`
	ReviewCount   int             `json:"reviewCount"`
	StockQuantity int             `json:"stockQuantity"`
	Status        string          `json:"status"`
}

const upsertProductSQL = `INSERT INTO products
	(id, name, description, price, original_price, category, images, rating, review_count, stock_quantity, status)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		description = EXCLUDED.description,
		price = EXCLUDED.price,
		original_price = EXCLUDED.original_price,
		category = EXCLUDED.category,
		images = EXCLUDED.images,
		rating = EXCLUDED.rating,
		review_count = EXCLUDED.review_count,
		stock_quantity = EXCLUDED.stock_quantity,
		status = EXCLUDED.status`

const upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, user_id, name, is_admin, active)
	VALUES ($1, $2, $3, $4, $5, TRUE)
	ON CONFLICT (key_hash) DO UPDATE SET active = TRUE, is_admin = EXCLUDED.is_admin`

func main() {
	var (
		databaseURL  string
		productsFile string
		apiKey       string
		adminAPIKey  string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "", "path to products JSON file (embedded catalog when empty)")
	flag.StringVar(&apiKey, "api-key", "", "user API key to seed (or SHOP_SEED_API_KEY env)")
	flag.StringVar(&adminAPIKey, "admin-api-key", "", "admin API key to seed (or SHOP_SEED_ADMIN_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SHOP_STORAGE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("SHOP_SEED_API_KEY")
	}
	if adminAPIKey == "" {
		adminAPIKey = os.Getenv("SHOP_SEED_ADMIN_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("SHOP_STORAGE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, apiKey, adminAPIKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, apiKey, adminAPIKey, pepper string) error {
	raw := db.SeedProducts
	if productsFile != "" {
		data, err := os.ReadFile(productsFile)
		if err != nil {
			return errors.Wrap(err, "read products file")
		}
		raw = data
	}

	var products []productJSON
	if err := json.Unmarshal(raw, &products); err != nil {
		return errors.Wrap(err, "parse products")
	}

	slog.Info("connecting to database")
	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, p := range products {
		g.Go(func() error {
			_, err := pool.Exec(gctx, upsertProductSQL,
				p.ID, p.Name, p.Description, p.Price, p.OriginalPrice,
				p.Category, p.Images, p.Rating, p.ReviewCount, p.StockQuantity, p.Status,
			)
			return errors.Wrapf(err, "upsert product %s", p.ID)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("products seeded", slog.Int("count", len(products)))

	seedKey := func(key, userID, name string, admin bool) error {
		if key == "" {
			return nil
		}
		hash := auth.HashKey(key, []byte(pepper))
		if _, err := pool.Exec(ctx, upsertAPIKeySQL, uuid.New().String(), hash, userID, name, admin); err != nil {
			return errors.Wrapf(err, "upsert api key for %s", userID)
		}
		slog.Info("api key seeded", slog.String("user", userID), slog.Bool("admin", admin))
		return nil
	}
	if err := seedKey(apiKey, "seed-user", "seeded user key", false); err != nil {
		return err
	}
	return seedKey(adminAPIKey, "seed-admin", "seeded admin key", true)
}
