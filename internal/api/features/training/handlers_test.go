package training

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapml/internal/api/features"
	"github.com/leapstack-labs/leapml/internal/engine"
	"github.com/leapstack-labs/leapml/internal/testutil"
)

func setup(t *testing.T) (chi.Router, *engine.SplitResult) {
	t.Helper()
	fixture := features.SetupTestFixture(t)

	ctx := context.Background()
	up, err := fixture.Engine.Upload(ctx, uuid.NewString(), "sample.csv", strings.NewReader(features.SampleCSV(100)))
	require.NoError(t, err)
	sp, err := fixture.Engine.Split(ctx, up.Path, "label", 0.2)
	require.NoError(t, err)

	router := chi.NewRouter()
	require.NoError(t, SetupRoutes(router, fixture.Engine, testutil.NewTestLogger(t)))
	return router, sp
}

func TestTrain(t *testing.T) {
	router, sp := setup(t)

	tests := []struct {
		name       string
		req        TrainRequest
		wantStatus int
		wantKind   string
	}{
		{
			name:       "logistic regression",
			req:        TrainRequest{ModelName: "logistic_regression", TrainPath: sp.TrainPath, TestPath: sp.TestPath, TargetColumn: "label"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "decision tree",
			req:        TrainRequest{ModelName: "decision_tree", TrainPath: sp.TrainPath, TestPath: sp.TestPath, TargetColumn: "label"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown model",
			req:        TrainRequest{ModelName: "svm", TrainPath: sp.TrainPath, TestPath: sp.TestPath, TargetColumn: "label"},
			wantStatus: http.StatusBadRequest,
			wantKind:   "unknown_model",
		},
		{
			name:       "missing fields",
			req:        TrainRequest{ModelName: "decision_tree"},
			wantStatus: http.StatusBadRequest,
			wantKind:   "validation_error",
		},
		{
			name:       "unknown target",
			req:        TrainRequest{ModelName: "decision_tree", TrainPath: sp.TrainPath, TestPath: sp.TestPath, TargetColumn: "nope"},
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "column_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, features.JSONRequest(t, "/train", tt.req))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			body := features.DecodeBody(t, rec)
			if tt.wantKind != "" {
				assert.Equal(t, tt.wantKind, body["kind"])
				return
			}

			assert.Equal(t, true, body["success"])
			results := body["results"].(map[string]any)
			assert.Equal(t, tt.req.ModelName, results["model_name"])

			acc := results["accuracy"].(float64)
			assert.GreaterOrEqual(t, acc, 0.0)
			assert.LessOrEqual(t, acc, 1.0)

			report := results["classification_report"].(map[string]any)
			for _, key := range []string{"0", "1", "accuracy", "macro avg", "weighted avg"} {
				assert.Contains(t, report, key)
			}
			assert.Len(t, results["feature_importance"], 2)
			assert.LessOrEqual(t, len(results["predictions_sample"].([]any)), 10)
		})
	}
}

func TestModels(t *testing.T) {
	router, _ := setup(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/models", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"models":["decision_tree","logistic_regression"],"methods":["standardization","normalization"]}`,
		rec.Body.String())
}
