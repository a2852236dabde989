package mongodb

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vophuhao/tour-cam-trai-sub001/internal/search"
)

func lookup(d bson.D, key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}

	return nil, false
}

func operator(t *testing.T, d bson.D, key string) string {
	t.Helper()

	v, ok := lookup(d, key)
	if !ok {
		t.Fatalf("no %q in %v", key, d)
	}

	inner, ok := v.(bson.D)
	if !ok || len(inner) == 0 {
		t.Fatalf("%q is not an operator document: %v", key, v)
	}

	return inner[0].Key
}

func TestPropertyFilterGeoModes(t *testing.T) {
	nearest := search.NewGeoFilter(10.77, 106.70, 50, search.SortNearest)
	within := search.NewGeoFilter(10.77, 106.70, 50, search.SortName)

	tests := []struct {
		name     string
		geo      *search.GeoFilter
		forCount bool
		want     string
	}{
		{name: "nearest find", geo: nearest, forCount: false, want: "$near"},
		{name: "nearest count", geo: nearest, forCount: true, want: "$geoWithin"},
		{name: "sorted find", geo: within, forCount: false, want: "$geoWithin"},
		{name: "sorted count", geo: within, forCount: true, want: "$geoWithin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := propertyFilter(search.PropertyQuery{Geo: tt.geo}, tt.forCount)

			if got := operator(t, filter, "address.location"); got != tt.want {
				t.Errorf("geo operator = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGeoClauseUnits(t *testing.T) {
	g := search.NewGeoFilter(10, 20, 63.781, search.SortName)

	clause := geoClause(*g, false)
	within := clause.Value.(bson.D)[0].Value.(bson.D)
	sphere := within[0].Value.(bson.A)

	center := sphere[0].(bson.A)
	if center[0] != 20.0 || center[1] != 10.0 {
		t.Errorf("center = %v, want [lng lat]", center)
	}

	if radians := sphere[1].(float64); radians < 0.00999 || radians > 0.01001 {
		t.Errorf("radius = %v radians, want 0.01", radians)
	}

	nearest := search.NewGeoFilter(10, 20, 5, search.SortNearest)
	near := geoClause(*nearest, false).Value.(bson.D)[0].Value.(bson.D)

	maxDistance, ok := lookup(near, "$maxDistance")
	if !ok || maxDistance != 5000.0 {
		t.Errorf("$maxDistance = %v, want 5000 meters", maxDistance)
	}
}

func TestPropertyFilterFields(t *testing.T) {
	active, rating := true, 4.5
	id := primitive.NewObjectID()

	filter := propertyFilter(search.PropertyQuery{
		Restricted: true,
		IDs:        []string{id.Hex(), "not-an-id"},
		Text:       "lake view",
		City:       "Da Lat (Lam Dong)",
		Country:    "Vietnam",
		IsActive:   &active,
		MinRating:  &rating,
		HostID:     id.Hex(),
	}, false)

	ids, _ := lookup(filter, "_id")
	if in := ids.(bson.D)[0].Value.([]primitive.ObjectID); len(in) != 1 || in[0] != id {
		t.Errorf("_id $in = %v, want only the valid id", in)
	}

	city, _ := lookup(filter, "address.city")
	if re := city.(primitive.Regex); re.Pattern != `Da Lat \(Lam Dong\)` || re.Options != "i" {
		t.Errorf("city regex = %+v", re)
	}

	if country, _ := lookup(filter, "address.country"); country != "Vietnam" {
		t.Errorf("country = %v", country)
	}

	if host, _ := lookup(filter, "host"); host != id {
		t.Errorf("host = %v, want ObjectID", host)
	}

	if got := operator(t, filter, "rating.average"); got != "$gte" {
		t.Errorf("rating operator = %s", got)
	}

	if got := operator(t, filter, "$text"); got != "$search" {
		t.Errorf("text operator = %s", got)
	}

	if _, ok := lookup(filter, "isFeatured"); ok {
		t.Error("unset flag must not be filtered")
	}
}

func TestPropertyFilterEmptyRestriction(t *testing.T) {
	filter := propertyFilter(search.PropertyQuery{Restricted: true}, false)

	ids, ok := lookup(filter, "_id")
	if !ok {
		t.Fatal("restricted query without ids must still filter on _id")
	}

	if in := ids.(bson.D)[0].Value.([]primitive.ObjectID); len(in) != 0 {
		t.Errorf("_id $in = %v, want empty", in)
	}
}

func TestSortDoc(t *testing.T) {
	if doc := sortDoc(nil); doc != nil {
		t.Errorf("sortDoc(nil) = %v, want nil", doc)
	}

	doc := sortDoc([]search.SortField{{Field: search.FieldRatingAverage, Desc: true}, {Field: search.FieldName}})
	want := bson.D{{Key: "rating.average", Value: -1}, {Key: "name", Value: 1}, {Key: "_id", Value: 1}}

	if len(doc) != len(want) {
		t.Fatalf("sortDoc = %v, want %v", doc, want)
	}

	for i := range want {
		if doc[i] != want[i] {
			t.Errorf("sortDoc[%d] = %v, want %v", i, doc[i], want[i])
		}
	}
}

func TestSiteFilterNights(t *testing.T) {
	filter := siteFilter(search.SiteQuery{ActiveOnly: true, MinGuests: 4, Nights: 3})

	if active, _ := lookup(filter, "isActive"); active != true {
		t.Errorf("isActive = %v", active)
	}

	if got := operator(t, filter, "capacity.maxGuests"); got != "$gte" {
		t.Errorf("guests operator = %s", got)
	}

	if _, ok := lookup(filter, "capacity.maxPets"); ok {
		t.Error("pets must not be filtered when zero")
	}

	or, ok := lookup(filter, "$or")
	if !ok || len(or.(bson.A)) != 2 {
		t.Errorf("$or = %v, want open-ended or bounded maximum nights", or)
	}
}

func TestSiteFilterWithoutNights(t *testing.T) {
	filter := siteFilter(search.SiteQuery{
		AccommodationTypes: []search.AccommodationType{search.AccommodationTent},
		InstantBookOnly:    true,
	})

	if _, ok := lookup(filter, "$or"); ok {
		t.Error("nights bounds must be skipped without dates")
	}

	if _, ok := lookup(filter, "isActive"); ok {
		t.Error("isActive must be skipped when not requested")
	}

	if instant, _ := lookup(filter, "bookingSettings.instantBook"); instant != true {
		t.Errorf("instantBook = %v", instant)
	}
}

func TestBookingFilter(t *testing.T) {
	in := time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)
	out := time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC)

	filter := bookingFilter(search.BookingQuery{
		SiteIDs:  []string{primitive.NewObjectID().Hex()},
		Statuses: search.BlockingStatuses,
		Range:    search.DateRange{CheckIn: in, CheckOut: out},
	})

	checkIn, _ := lookup(filter, "checkIn")
	if op := checkIn.(bson.D)[0]; op.Key != "$lt" || op.Value != out {
		t.Errorf("checkIn = %v, want $lt checkOut", op)
	}

	checkOut, _ := lookup(filter, "checkOut")
	if op := checkOut.(bson.D)[0]; op.Key != "$gt" || op.Value != in {
		t.Errorf("checkOut = %v, want $gt checkIn", op)
	}
}

func TestMinPricePipeline(t *testing.T) {
	q := search.PropertyQuery{Geo: search.NewGeoFilter(10, 20, 5, search.SortMinPriceDesc)}

	pipeline := minPricePipeline(q, true, 20, 10)

	stages := make([]string, 0, len(pipeline))
	for _, stage := range pipeline {
		stages = append(stages, stage[0].Key)
	}

	want := []string{"$match", "$lookup", "$addFields", "$sort", "$skip", "$limit", "$project"}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}

	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage %d = %s, want %s", i, stages[i], want[i])
		}
	}

	match := pipeline[0][0].Value.(bson.D)
	if got := operator(t, match, "address.location"); got != "$geoWithin" {
		t.Errorf("$match geo operator = %s, want $geoWithin", got)
	}

	sortStage := pipeline[3][0].Value.(bson.D)
	if sortStage[0].Key != "priceMissing" || sortStage[0].Value != 1 {
		t.Errorf("missing prices must sort last, got %v", sortStage[0])
	}

	if sortStage[1].Key != "minPrice" || sortStage[1].Value != -1 {
		t.Errorf("minPrice direction = %v, want -1", sortStage[1])
	}

	if skip := pipeline[4][0].Value; skip != int64(20) {
		t.Errorf("$skip = %v", skip)
	}
}
