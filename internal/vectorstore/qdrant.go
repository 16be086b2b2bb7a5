// Package vectorstore manages the hybrid dense+sparse collection in Qdrant
// and serves upsert, fused similarity search, and point deletion.
package vectorstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpccodes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Tracer for OpenTelemetry instrumentation.
var tracer = otel.Tracer("recall.vectorstore.qdrant")

// IsTransientError checks if an error is transient (should retry).
// Returns true for network timeouts and temporary unavailability,
// false for invalid arguments, not found, permission denied.
func IsTransientError(err error) bool {
	if err == nil {
		return false
	}

	st, ok := status.FromError(err)
	if !ok {
		return false
	}

	switch st.Code() {
	case grpccodes.Unavailable, grpccodes.DeadlineExceeded, grpccodes.Aborted, grpccodes.ResourceExhausted:
		return true
	default:
		return false
	}
}

// Client is the Qdrant-backed hybrid vector store.
//
// It owns one collection with two named vector spaces: "dense" (fixed
// dimensionality, cosine distance) and "sparse" (lexical index of unbounded
// cardinality). Search fuses per-space rankings locally with Reciprocal
// Rank Fusion and degrades to dense-only when the sparse side is empty or
// the fused call fails.
type Client struct {
	client *qdrant.Client
	config Config
	logger *zap.Logger

	// denseFn and sparseFn run the per-space ranked queries. NewClient
	// points them at the gRPC-backed implementations; tests substitute
	// in-memory ones.
	denseFn  func(ctx context.Context, dense []float32, limit int, filter *qdrant.Filter) ([]ScoredPoint, error)
	sparseFn func(ctx context.Context, sparse SparseVector, limit int, filter *qdrant.Filter) ([]ScoredPoint, error)

	// ensured caches collection existence after EnsureCollection.
	ensured struct {
		sync.Mutex
		done bool
	}

	// circuitBreaker tracks failures across operations.
	circuitBreaker struct {
		failures int
		lastFail time.Time
		mu       sync.Mutex
	}
}

// NewClient creates a Client and verifies connectivity with a health check.
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	qc, err := qdrant.NewClient(&qdrant.Config{
		Host:   config.Host,
		Port:   config.Port,
		UseTLS: config.UseTLS,
		GrpcOptions: []grpc.DialOption{
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(config.MaxMessageSize),
				grpc.MaxCallSendMsgSize(config.MaxMessageSize),
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}

	c := &Client{
		client: qc,
		config: config,
		logger: logger.Named("vectorstore"),
	}
	c.denseFn = c.denseSearch
	c.sparseFn = c.sparseSearch

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.healthCheck(ctx); err != nil {
		_ = qc.Close()
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	return c, nil
}

// Close closes the gRPC connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *Client) healthCheck(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Client.HealthCheck")
	defer span.End()

	if _, err := c.client.HealthCheck(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("health check failed: %w", err)
	}
	span.SetStatus(codes.Ok, "healthy")
	return nil
}

// EnsureCollection creates the hybrid collection if it does not exist.
// Idempotent and race tolerant: a concurrent create by another process is
// treated as success.
func (c *Client) EnsureCollection(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Client.EnsureCollection")
	defer span.End()
	span.SetAttributes(attribute.String("collection", c.config.CollectionName))

	c.ensured.Lock()
	defer c.ensured.Unlock()
	if c.ensured.done {
		return nil
	}

	exists, err := c.client.CollectionExists(ctx, c.config.CollectionName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("checking collection %s: %w", c.config.CollectionName, err)
	}
	if exists {
		c.ensured.done = true
		span.SetStatus(codes.Ok, "exists")
		return nil
	}

	err = c.retryOperation(ctx, "create_collection", func() error {
		createErr := c.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: c.config.CollectionName,
			VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
				denseVectorName: {
					Size:     c.config.DenseSize,
					Distance: qdrant.Distance_Cosine,
				},
			}),
			SparseVectorsConfig: qdrant.NewSparseVectorsConfig(map[string]*qdrant.SparseVectorParams{
				sparseVectorName: {},
			}),
		})
		// Another writer may create the collection between the existence
		// check and this call.
		if st, ok := status.FromError(createErr); ok && st.Code() == grpccodes.AlreadyExists {
			return nil
		}
		return createErr
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("creating collection %s: %w", c.config.CollectionName, err)
	}

	c.ensured.done = true
	span.SetStatus(codes.Ok, "created")
	return nil
}

// Upsert writes one point per payload/vector triple with a fresh uuid id.
//
// The batch is all-or-nothing from the caller's perspective: any remote
// failure fails the whole batch and the caller retries it in full.
// Replaying a batch creates duplicate points since ids are regenerated.
func (c *Client) Upsert(ctx context.Context, payloads []Payload, dense [][]float32, sparse []SparseVector) error {
	start := time.Now()
	var opErr error
	defer func() { recordOperation("upsert", time.Since(start).Seconds(), opErr) }()

	ctx, span := tracer.Start(ctx, "Client.Upsert")
	defer span.End()
	span.SetAttributes(
		attribute.Int("batch_size", len(payloads)),
		attribute.String("collection", c.config.CollectionName),
	)

	if len(payloads) == 0 {
		opErr = ErrEmptyBatch
		return opErr
	}
	if len(payloads) != len(dense) || len(payloads) != len(sparse) {
		opErr = fmt.Errorf("%w: %d payloads, %d dense, %d sparse",
			ErrBatchMismatch, len(payloads), len(dense), len(sparse))
		return opErr
	}

	points := make([]*qdrant.PointStruct, len(payloads))
	for i := range payloads {
		if uint64(len(dense[i])) != c.config.DenseSize {
			opErr = fmt.Errorf("%w: record %d has dimension %d, collection expects %d",
				ErrDimensionMismatch, i, len(dense[i]), c.config.DenseSize)
			span.RecordError(opErr)
			return opErr
		}
		if err := sparse[i].Validate(); err != nil {
			opErr = fmt.Errorf("record %d: %w", i, err)
			span.RecordError(opErr)
			return opErr
		}

		points[i] = &qdrant.PointStruct{
			Id: qdrant.NewIDUUID(uuid.New().String()),
			Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
				denseVectorName:  qdrant.NewVectorDense(dense[i]),
				sparseVectorName: qdrant.NewVectorSparse(sparse[i].Indices, sparse[i].Values),
			}),
			Payload: toQdrantPayload(payloads[i]),
		}
	}

	opErr = c.retryOperation(ctx, "upsert", func() error {
		_, err := c.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: c.config.CollectionName,
			Points:         points,
		})
		return err
	})
	if opErr != nil {
		span.RecordError(opErr)
		span.SetStatus(codes.Error, opErr.Error())
		return fmt.Errorf("upserting %d points: %w", len(points), opErr)
	}

	PointsUpsertedTotal.Add(float64(len(points)))
	span.SetStatus(codes.Ok, "success")
	return nil
}

// HybridSearch runs one ranked query per vector space and fuses the lists
// with Reciprocal Rank Fusion.
//
// Degradation ladder, in order:
//   - empty dense query: ErrEmptyQueryVector (the only error surface);
//   - empty sparse query: dense-only search, no fusion;
//   - filter translation failure: search proceeds unfiltered;
//   - either ranked query failing: one dense-only fallback attempt.
//
// The returned outcome flags degradation internally; it is logged, never
// surfaced through the result contract.
func (c *Client) HybridSearch(ctx context.Context, dense []float32, sparse SparseVector, limit int, filters map[string]any) (SearchOutcome, error) {
	start := time.Now()
	var opErr error
	defer func() { recordOperation("search", time.Since(start).Seconds(), opErr) }()

	ctx, span := tracer.Start(ctx, "Client.HybridSearch")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", c.config.CollectionName),
		attribute.Int("limit", limit),
	)

	if len(dense) == 0 {
		opErr = ErrEmptyQueryVector
		span.SetStatus(codes.Error, opErr.Error())
		return SearchOutcome{}, opErr
	}
	if limit <= 0 {
		limit = 10
	}

	filter := c.translateFilter(filters)

	if sparse.IsEmpty() || sparse.Validate() != nil {
		c.logger.Debug("sparse query empty, using dense-only search")
		points, err := c.denseFn(ctx, dense, limit, filter)
		if err != nil {
			opErr = err
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return SearchOutcome{}, fmt.Errorf("dense search: %w", err)
		}
		span.SetStatus(codes.Ok, "dense-only")
		return SearchOutcome{Points: points}, nil
	}

	densePoints, denseErr := c.denseFn(ctx, dense, limit, filter)
	sparsePoints, sparseErr := c.sparseFn(ctx, sparse, limit, filter)

	if denseErr != nil || sparseErr != nil {
		// Recoverable degradation: one dense-only retry, not an error.
		c.logger.Warn("hybrid search degraded to dense-only",
			zap.NamedError("dense_error", denseErr),
			zap.NamedError("sparse_error", sparseErr))
		SearchDegradedTotal.Inc()

		points := densePoints
		if denseErr != nil {
			var err error
			points, err = c.denseFn(ctx, dense, limit, filter)
			if err != nil {
				opErr = err
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return SearchOutcome{Degraded: true}, fmt.Errorf("dense fallback search: %w", err)
			}
		}
		span.SetStatus(codes.Ok, "degraded")
		return SearchOutcome{Points: points, Degraded: true}, nil
	}

	fusedPoints := fuseRRF([]rankedList{
		{points: densePoints, weight: c.config.Weights.Dense},
		{points: sparsePoints, weight: c.config.Weights.Sparse},
	}, c.config.RRFConstant, limit)

	span.SetAttributes(attribute.Int("results", len(fusedPoints)))
	span.SetStatus(codes.Ok, "fused")
	return SearchOutcome{Points: fusedPoints}, nil
}

// DenseSearch runs a single-space ranked search against the dense index.
func (c *Client) DenseSearch(ctx context.Context, dense []float32, limit int, filters map[string]any) ([]ScoredPoint, error) {
	if len(dense) == 0 {
		return nil, ErrEmptyQueryVector
	}
	if limit <= 0 {
		limit = 10
	}
	return c.denseFn(ctx, dense, limit, c.translateFilter(filters))
}

// translateFilter converts caller filters, degrading to no filter when
// translation fails.
func (c *Client) translateFilter(filters map[string]any) *qdrant.Filter {
	filter, err := buildFilter(filters)
	if err != nil {
		c.logger.Warn("filter translation failed, searching unfiltered", zap.Error(err))
		return nil
	}
	return filter
}

func (c *Client) denseSearch(ctx context.Context, dense []float32, limit int, filter *qdrant.Filter) ([]ScoredPoint, error) {
	return c.query(ctx, &qdrant.QueryPoints{
		CollectionName: c.config.CollectionName,
		Query:          qdrant.NewQueryDense(dense),
		Using:          qdrant.PtrOf(denseVectorName),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         filter,
	})
}

func (c *Client) sparseSearch(ctx context.Context, sparse SparseVector, limit int, filter *qdrant.Filter) ([]ScoredPoint, error) {
	return c.query(ctx, &qdrant.QueryPoints{
		CollectionName: c.config.CollectionName,
		Query:          qdrant.NewQuerySparse(sparse.Indices, sparse.Values),
		Using:          qdrant.PtrOf(sparseVectorName),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         filter,
	})
}

func (c *Client) query(ctx context.Context, req *qdrant.QueryPoints) ([]ScoredPoint, error) {
	var results []*qdrant.ScoredPoint
	err := c.retryOperation(ctx, "query", func() error {
		res, err := c.client.Query(ctx, req)
		if err != nil {
			return err
		}
		results = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	points := make([]ScoredPoint, len(results))
	for i, p := range results {
		points[i] = ScoredPoint{
			ID:      p.GetId().GetUuid(),
			Score:   float64(p.GetScore()),
			Payload: fromQdrantPayload(p.GetPayload()),
		}
	}
	return points, nil
}

// Delete removes all points belonging to the given document ids.
func (c *Client) Delete(ctx context.Context, docIDs []string) error {
	start := time.Now()
	var opErr error
	defer func() { recordOperation("delete", time.Since(start).Seconds(), opErr) }()

	ctx, span := tracer.Start(ctx, "Client.Delete")
	defer span.End()
	span.SetAttributes(
		attribute.Int("doc_count", len(docIDs)),
		attribute.String("collection", c.config.CollectionName),
	)

	if len(docIDs) == 0 {
		return nil
	}

	opErr = c.retryOperation(ctx, "delete", func() error {
		_, err := c.client.Delete(ctx, &qdrant.DeletePoints{
			CollectionName: c.config.CollectionName,
			Points: &qdrant.PointsSelector{
				PointsSelectorOneOf: &qdrant.PointsSelector_Filter{
					Filter: &qdrant.Filter{
						Must: []*qdrant.Condition{
							qdrant.NewMatchKeywords("doc_id", docIDs...),
						},
					},
				},
			},
		})
		return err
	})
	if opErr != nil {
		span.RecordError(opErr)
		span.SetStatus(codes.Error, opErr.Error())
		return fmt.Errorf("deleting points for %d documents: %w", len(docIDs), opErr)
	}

	span.SetStatus(codes.Ok, "success")
	return nil
}

// CollectionInfo returns point count and dense dimensionality.
func (c *Client) CollectionInfo(ctx context.Context) (*CollectionInfo, error) {
	ctx, span := tracer.Start(ctx, "Client.CollectionInfo")
	defer span.End()
	span.SetAttributes(attribute.String("collection", c.config.CollectionName))

	var info *CollectionInfo
	err := c.retryOperation(ctx, "collection_info", func() error {
		collInfo, err := c.client.GetCollectionInfo(ctx, c.config.CollectionName)
		if err != nil {
			if st, ok := status.FromError(err); ok && st.Code() == grpccodes.NotFound {
				return ErrCollectionNotFound
			}
			return err
		}
		pointCount := 0
		if collInfo.PointsCount != nil {
			pointCount = int(*collInfo.PointsCount)
		}
		info = &CollectionInfo{
			Name:       c.config.CollectionName,
			PointCount: pointCount,
			DenseSize:  int(c.config.DenseSize),
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("getting collection info: %w", err)
	}

	span.SetStatus(codes.Ok, "success")
	return info, nil
}

// retryOperation retries an operation with exponential backoff.
func (c *Client) retryOperation(ctx context.Context, operationName string, operation func() error) error {
	backoff := c.config.RetryBackoff

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		err := operation()
		if err == nil {
			c.resetCircuitBreaker()
			return nil
		}

		if c.isCircuitOpen() {
			return fmt.Errorf("%s: circuit breaker open", operationName)
		}

		if !IsTransientError(err) {
			return fmt.Errorf("%s failed (permanent): %w", operationName, err)
		}

		c.recordFailure()

		if attempt == c.config.MaxRetries {
			return fmt.Errorf("%s failed after %d retries: %w", operationName, c.config.MaxRetries, err)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s canceled: %w", operationName, ctx.Err())
		case <-time.After(backoff):
			backoff *= 2
		}
	}
	return nil
}

func (c *Client) recordFailure() {
	c.circuitBreaker.mu.Lock()
	defer c.circuitBreaker.mu.Unlock()
	c.circuitBreaker.failures++
	c.circuitBreaker.lastFail = time.Now()
}

func (c *Client) resetCircuitBreaker() {
	c.circuitBreaker.mu.Lock()
	defer c.circuitBreaker.mu.Unlock()
	c.circuitBreaker.failures = 0
}

func (c *Client) isCircuitOpen() bool {
	c.circuitBreaker.mu.Lock()
	defer c.circuitBreaker.mu.Unlock()

	if c.circuitBreaker.failures >= c.config.CircuitBreakerThreshold {
		// Allow retry after 30 seconds.
		if time.Since(c.circuitBreaker.lastFail) > 30*time.Second {
			c.circuitBreaker.failures = 0
			return false
		}
		return true
	}
	return false
}

// toQdrantPayload converts a flat payload map to Qdrant values.
func toQdrantPayload(payload Payload) map[string]*qdrant.Value {
	out := make(map[string]*qdrant.Value, len(payload))
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: val}}
		case int:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(val)}}
		case int64:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: val}}
		case float64:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: val}}
		case bool:
			out[k] = &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: val}}
		}
	}
	return out
}

// fromQdrantPayload converts Qdrant values back to a flat payload map.
func fromQdrantPayload(payload map[string]*qdrant.Value) Payload {
	if payload == nil {
		return nil
	}
	out := make(Payload, len(payload))
	for k, v := range payload {
		switch val := v.Kind.(type) {
		case *qdrant.Value_StringValue:
			out[k] = val.StringValue
		case *qdrant.Value_IntegerValue:
			out[k] = val.IntegerValue
		case *qdrant.Value_DoubleValue:
			out[k] = val.DoubleValue
		case *qdrant.Value_BoolValue:
			out[k] = val.BoolValue
		}
	}
	return out
}
