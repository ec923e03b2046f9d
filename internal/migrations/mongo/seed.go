package mongo

import (
	"context"
	"fmt"
	"time"

	catalogrepo "barbershop/internal/catalog/repository"
	"barbershop/pkg/logger"
	"barbershop/pkg/model"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CatalogSeed is the shop's service list. Existing entries, matched by name,
// are never overwritten so prices edited in the database survive a rerun.
var CatalogSeed = []model.Service{
	{Name: "Haircut", Description: "Classic cut, wash and style", DurationMinutes: 30, Price: decimal.RequireFromString("40.00"), Active: true},
	{Name: "Beard Trim", Description: "Beard shaping and line-up", DurationMinutes: 20, Price: decimal.RequireFromString("25.00"), Active: true},
	{Name: "Haircut & Beard", Description: "Haircut with full beard trim", DurationMinutes: 50, Price: decimal.RequireFromString("60.00"), Active: true},
	{Name: "Hot Towel Shave", Description: "Straight razor shave with hot towel", DurationMinutes: 30, Price: decimal.RequireFromString("35.00"), Active: true},
}

func SeedCatalog(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	coll := db.Collection(catalogrepo.CollectionName)
	now := time.Now().UTC().Truncate(time.Millisecond)

	inserted := 0
	for _, svc := range CatalogSeed {
		svc.CreatedAt = now
		update := bson.M{"$setOnInsert": svc}

		result, err := coll.UpdateOne(ctx, bson.M{"name": svc.Name}, update, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("failed to seed service %q: %w", svc.Name, err)
		}
		if result.UpsertedCount > 0 {
			inserted++
		}
	}

	log.Info("Catalog seeded", "inserted", inserted, "total", len(CatalogSeed))
	return nil
}
