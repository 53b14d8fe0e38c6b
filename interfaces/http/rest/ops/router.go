package ops

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Router serves the internal operations surface: deep readiness checks
// and runtime statistics. It binds to the ops address, never the public
// one, so the checks can afford a real table round trip.
type Router struct {
	dynamo    *awsdynamodb.Client
	tableName string
	logger    *zap.Logger
	started   time.Time
}

// NewRouter creates the ops router
func NewRouter(dynamo *awsdynamodb.Client, tableName string, logger *zap.Logger) *mux.Router {
	rt := &Router{
		dynamo:    dynamo,
		tableName: tableName,
		logger:    logger,
		started:   time.Now(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", rt.health).Methods("GET")
	router.HandleFunc("/readyz", rt.readiness).Methods("GET")
	router.HandleFunc("/stats", rt.stats).Methods("GET")
	return router
}

func (rt *Router) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readiness verifies the application table is reachable and active
func (rt *Router) readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	out, err := rt.dynamo.DescribeTable(ctx, &awsdynamodb.DescribeTableInput{
		TableName: aws.String(rt.tableName),
	})
	if err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err), zap.String("table", rt.tableName))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "table unreachable",
		})
		return
	}

	if out.Table.TableStatus != types.TableStatusActive {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "table " + string(out.Table.TableStatus),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (rt *Router) stats(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds":   int(time.Since(rt.started).Seconds()),
		"goroutines":       runtime.NumGoroutine(),
		"heap_alloc_bytes": mem.HeapAlloc,
		"heap_objects":     mem.HeapObjects,
		"gc_cycles":        mem.NumGC,
		"go_version":       runtime.Version(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
