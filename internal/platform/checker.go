// AngelaMos | 2026
// checker.go

package platform

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/voqo-dev/crm-backend/internal/config"
)

// Activity is what the calling platform knows about a contact's usage.
type Activity struct {
	LastActivity *time.Time
	CallCount    int
}

// Checker queries the calling platform for a contact's usage inside
// the lookback window. A nil Activity with nil error means the contact
// has no platform account.
type Checker interface {
	CheckActivity(ctx context.Context, email string, window time.Duration) (*Activity, error)
	Ping(ctx context.Context) error
}

// activityTimeLayout matches the ISO-8601 strings the platform writes
// to start_time. Lexicographic order on these strings is time order,
// which is what the $gte filter relies on.
const activityTimeLayout = "2006-01-02T15:04:05.000Z"

// MongoChecker reads the calling platform's MongoDB directly.
type MongoChecker struct {
	client *mongo.Client
	agents *mongo.Collection
	calls  *mongo.Collection
}

func NewMongoChecker(ctx context.Context, cfg config.MongoConfig) (*MongoChecker, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to platform mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping platform mongo: %w", err)
	}

	db := client.Database(cfg.Database)
	return &MongoChecker{
		client: client,
		agents: db.Collection(cfg.AgentsCollection),
		calls:  db.Collection(cfg.CallsCollection),
	}, nil
}

type agentDoc struct {
	OID     primitive.ObjectID `bson:"_id"`
	AgentID string             `bson:"id,omitempty"`
}

func (d *agentDoc) identifier() string {
	if d.AgentID != "" {
		return d.AgentID
	}
	return d.OID.Hex()
}

type callDoc struct {
	StartTime string `bson:"start_time"`
}

// CheckActivity finds the platform agent registered under the
// contact's email and counts their calls inside the window.
func (m *MongoChecker) CheckActivity(
	ctx context.Context,
	email string,
	window time.Duration,
) (*Activity, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"created_by": email},
		bson.M{"email": email},
	}}

	var agent agentDoc
	err := m.agents.FindOne(ctx, filter).Decode(&agent)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find agent for %s: %w", email, err)
	}

	agentID := agent.identifier()
	cutoff := time.Now().UTC().Add(-window).Format(activityTimeLayout)

	count, err := m.calls.CountDocuments(ctx, bson.M{
		"agent_id":   agentID,
		"start_time": bson.M{"$gte": cutoff},
	})
	if err != nil {
		return nil, fmt.Errorf("count calls for %s: %w", email, err)
	}

	activity := &Activity{CallCount: int(count)}

	var latest callDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "start_time", Value: -1}})
	err = m.calls.FindOne(ctx, bson.M{"agent_id": agentID}, opts).Decode(&latest)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("find latest call for %s: %w", email, err)
	}
	if err == nil {
		if t, perr := time.Parse(activityTimeLayout, latest.StartTime); perr == nil {
			activity.LastActivity = &t
		} else if t, perr := time.Parse(time.RFC3339, latest.StartTime); perr == nil {
			activity.LastActivity = &t
		}
	}

	return activity, nil
}

func (m *MongoChecker) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoChecker) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

var _ Checker = (*MongoChecker)(nil)
