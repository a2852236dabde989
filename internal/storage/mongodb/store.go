package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/logger"
	"github.com/vophuhao/tour-cam-trai-sub001/internal/search"
)

const (
	propertiesCollection = "properties"
	sitesCollection      = "sites"
	bookingsCollection   = "bookings"
	usersCollection      = "users"
)

type Config struct {
	L              *logger.Logger
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// Store reads properties, sites, bookings and host profiles from MongoDB.
type Store struct {
	l      *logger.Logger
	client *mongo.Client
	db     *mongo.Database
}

func New(ctx context.Context, conf Config) (*Store, error) {
	if conf.ConnectTimeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, conf.ConnectTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())

		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Store{
		l:      conf.L,
		client: client,
		db:     client.Database(conf.Database),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect from mongo: %w", err)
	}

	return nil
}

// EnsureIndexes creates the indexes the search queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		propertiesCollection: {
			{Keys: bson.D{{Key: "address.location", Value: "2dsphere"}}},
			{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}}},
			{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "rating.count", Value: -1}}},
		},
		sitesCollection: {
			{Keys: bson.D{{Key: "property", Value: 1}, {Key: "isActive", Value: 1}}},
			{Keys: bson.D{{Key: "accommodationType", Value: 1}}},
			{Keys: bson.D{{Key: "amenities", Value: 1}}},
		},
		bookingsCollection: {
			{Keys: bson.D{{Key: "site", Value: 1}, {Key: "status", Value: 1}, {Key: "checkIn", Value: 1}, {Key: "checkOut", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		names, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", collection, err)
		}

		s.l.LogInfo("Indexes %v are ready on %s", names, collection)
	}

	return nil
}

func (s *Store) FindProperties(
	ctx context.Context,
	q search.PropertyQuery,
	sortFields []search.SortField,
	skip, limit int64,
) ([]search.Property, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit)
	if doc := sortDoc(sortFields); doc != nil {
		opts.SetSort(doc)
	}

	cursor, err := s.db.Collection(propertiesCollection).Find(ctx, propertyFilter(q, false), opts)
	if err != nil {
		return nil, fmt.Errorf("find properties: %w", err)
	}

	var out []search.Property
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}

	return out, nil
}

func (s *Store) CountProperties(ctx context.Context, q search.PropertyQuery) (int64, error) {
	total, err := s.db.Collection(propertiesCollection).CountDocuments(ctx, propertyFilter(q, true))
	if err != nil {
		return 0, fmt.Errorf("count properties: %w", err)
	}

	return total, nil
}

func (s *Store) FindPropertiesByMinPrice(
	ctx context.Context,
	q search.PropertyQuery,
	desc bool,
	skip, limit int64,
) ([]search.PricedProperty, error) {
	cursor, err := s.db.Collection(propertiesCollection).Aggregate(ctx, minPricePipeline(q, desc, skip, limit))
	if err != nil {
		return nil, fmt.Errorf("aggregate properties by min price: %w", err)
	}

	var out []search.PricedProperty
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode priced properties: %w", err)
	}

	return out, nil
}

func (s *Store) FindSiteRefs(ctx context.Context, q search.SiteQuery) ([]search.SiteRef, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}, {Key: "property", Value: 1}})

	cursor, err := s.db.Collection(sitesCollection).Find(ctx, siteFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("find sites: %w", err)
	}

	var out []search.SiteRef
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode sites: %w", err)
	}

	return out, nil
}

func (s *Store) MinActivePrice(ctx context.Context, propertyID string) (float64, bool, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "pricing.basePrice", Value: 1}}).
		SetProjection(bson.D{{Key: "pricing.basePrice", Value: 1}})

	filter := bson.D{{Key: "property", Value: idValue(propertyID)}, {Key: "isActive", Value: true}}

	var site struct {
		Pricing struct {
			BasePrice float64 `bson:"basePrice"`
		} `bson:"pricing"`
	}

	err := s.db.Collection(sitesCollection).FindOne(ctx, filter, opts).Decode(&site)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, fmt.Errorf("find cheapest active site of %s: %w", propertyID, err)
	}

	return site.Pricing.BasePrice, true, nil
}

func (s *Store) FindBookings(ctx context.Context, q search.BookingQuery) ([]search.Booking, error) {
	if len(q.SiteIDs) == 0 {
		return nil, nil
	}

	cursor, err := s.db.Collection(bookingsCollection).Find(ctx, bookingFilter(q))
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}

	var out []search.Booking
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}

	return out, nil
}

// HostSummaries never reads more than the public profile fields.
func (s *Store) HostSummaries(ctx context.Context, ids []string) (map[string]search.HostSummary, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "name", Value: 1}, {Key: "avatar", Value: 1}})
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: objectIDs(ids)}}}}

	cursor, err := s.db.Collection(usersCollection).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find hosts: %w", err)
	}

	var hosts []search.HostSummary
	if err := cursor.All(ctx, &hosts); err != nil {
		return nil, fmt.Errorf("decode hosts: %w", err)
	}

	out := make(map[string]search.HostSummary, len(hosts))
	for _, h := range hosts {
		out[h.ID] = h
	}

	return out, nil
}
