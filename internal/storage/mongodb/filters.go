package mongodb

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/search"
)

// objectIDs converts hex ids, dropping the ones that can never match.
func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))

	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}

		out = append(out, oid)
	}

	return out
}

// idValue returns the ObjectID for a hex id, or the raw string otherwise.
func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}

	return id
}

// propertyFilter builds the property predicate. countDocuments rejects $near,
// so a count gets the equivalent $centerSphere cap instead.
func propertyFilter(q search.PropertyQuery, forCount bool) bson.D {
	filter := bson.D{}

	if q.Restricted {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$in", Value: objectIDs(q.IDs)}}})
	}

	if q.Text != "" {
		filter = append(filter, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: q.Text}}})
	}

	if q.City != "" {
		filter = append(filter, bson.E{Key: "address.city", Value: containsFold(q.City)})
	}

	if q.State != "" {
		filter = append(filter, bson.E{Key: "address.state", Value: containsFold(q.State)})
	}

	if q.Country != "" {
		filter = append(filter, bson.E{Key: "address.country", Value: q.Country})
	}

	if q.IsActive != nil {
		filter = append(filter, bson.E{Key: "isActive", Value: *q.IsActive})
	}

	if q.IsFeatured != nil {
		filter = append(filter, bson.E{Key: "isFeatured", Value: *q.IsFeatured})
	}

	if q.IsVerified != nil {
		filter = append(filter, bson.E{Key: "isVerified", Value: *q.IsVerified})
	}

	if q.HostID != "" {
		filter = append(filter, bson.E{Key: "host", Value: idValue(q.HostID)})
	}

	if q.MinRating != nil {
		filter = append(filter, bson.E{Key: "rating.average", Value: bson.D{{Key: "$gte", Value: *q.MinRating}}})
	}

	if q.Geo != nil {
		filter = append(filter, geoClause(*q.Geo, forCount))
	}

	return filter
}

func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func geoClause(g search.GeoFilter, forCount bool) bson.E {
	center := bson.A{g.Center.Lng(), g.Center.Lat()}

	if g.Mode == search.GeoNearest && !forCount {
		return bson.E{Key: "address.location", Value: bson.D{{Key: "$near", Value: bson.D{
			{Key: "$geometry", Value: bson.D{{Key: "type", Value: "Point"}, {Key: "coordinates", Value: center}}},
			{Key: "$maxDistance", Value: g.MaxDistanceMeters()},
		}}}}
	}

	return bson.E{Key: "address.location", Value: bson.D{{Key: "$geoWithin", Value: bson.D{
		{Key: "$centerSphere", Value: bson.A{center, g.RadiusRadians()}},
	}}}}
}

// sortDoc returns nil when the store order must be kept ($near results).
func sortDoc(fields []search.SortField) bson.D {
	if len(fields) == 0 {
		return nil
	}

	doc := make(bson.D, 0, len(fields)+1)

	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}

		doc = append(doc, bson.E{Key: f.Field, Value: dir})
	}

	return append(doc, bson.E{Key: "_id", Value: 1})
}

func siteFilter(q search.SiteQuery) bson.D {
	filter := bson.D{}

	if q.ActiveOnly {
		filter = append(filter, bson.E{Key: "isActive", Value: true})
	}

	if q.MinGuests > 0 {
		filter = append(filter, bson.E{Key: "capacity.maxGuests", Value: bson.D{{Key: "$gte", Value: q.MinGuests}}})
	}

	if q.MinPets > 0 {
		filter = append(filter, bson.E{Key: "capacity.maxPets", Value: bson.D{{Key: "$gte", Value: q.MinPets}}})
	}

	if q.Nights > 0 {
		filter = append(filter,
			bson.E{Key: "bookingSettings.minimumNights", Value: bson.D{{Key: "$lte", Value: q.Nights}}},
			bson.E{Key: "$or", Value: bson.A{
				bson.D{{Key: "bookingSettings.maximumNights", Value: nil}},
				bson.D{{Key: "bookingSettings.maximumNights", Value: bson.D{{Key: "$gte", Value: q.Nights}}}},
			}},
		)
	}

	if len(q.AccommodationTypes) > 0 {
		filter = append(filter, bson.E{Key: "accommodationType", Value: bson.D{{Key: "$in", Value: q.AccommodationTypes}}})
	}

	if len(q.AmenityIDs) > 0 {
		filter = append(filter, bson.E{Key: "amenities", Value: bson.D{{Key: "$in", Value: objectIDs(q.AmenityIDs)}}})
	}

	if q.InstantBookOnly {
		filter = append(filter, bson.E{Key: "bookingSettings.instantBook", Value: true})
	}

	return filter
}

// bookingFilter selects the bookings that may overlap the stay. The caller
// still runs the exact half-open overlap check.
func bookingFilter(q search.BookingQuery) bson.D {
	return bson.D{
		{Key: "site", Value: bson.D{{Key: "$in", Value: objectIDs(q.SiteIDs)}}},
		{Key: "status", Value: bson.D{{Key: "$in", Value: q.Statuses}}},
		{Key: "checkIn", Value: bson.D{{Key: "$lt", Value: q.Range.CheckOut}}},
		{Key: "checkOut", Value: bson.D{{Key: "$gt", Value: q.Range.CheckIn}}},
	}
}

// minPricePipeline joins each property to its active sites, computes the
// lowest base price and returns one sorted page. Properties without an active
// site get search.NoActivePrice and sort last in both directions.
func minPricePipeline(q search.PropertyQuery, desc bool, skip, limit int64) mongo.Pipeline {
	dir := 1
	if desc {
		dir = -1
	}

	activeSites := bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{{Key: "$and", Value: bson.A{
			bson.D{{Key: "$eq", Value: bson.A{"$property", "$$propertyId"}}},
			bson.D{{Key: "$eq", Value: bson.A{"$isActive", true}}},
		}}}}}}},
		bson.D{{Key: "$project", Value: bson.D{{Key: "pricing.basePrice", Value: 1}}}},
	}

	return mongo.Pipeline{
		{{Key: "$match", Value: propertyFilter(q, true)}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: sitesCollection},
			{Key: "let", Value: bson.D{{Key: "propertyId", Value: "$_id"}}},
			{Key: "pipeline", Value: activeSites},
			{Key: "as", Value: "activeSites"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "minPrice", Value: bson.D{{Key: "$ifNull", Value: bson.A{
				bson.D{{Key: "$min", Value: "$activeSites.pricing.basePrice"}},
				search.NoActivePrice,
			}}}},
			{Key: "priceMissing", Value: bson.D{{Key: "$eq", Value: bson.A{bson.D{{Key: "$size", Value: "$activeSites"}}, 0}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "priceMissing", Value: 1}, {Key: "minPrice", Value: dir}, {Key: "_id", Value: 1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$project", Value: bson.D{{Key: "activeSites", Value: 0}, {Key: "priceMissing", Value: 0}}}},
	}
}
