package reportshttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"krakenreport/internal/logger"
	"krakenreport/internal/store"
	"krakenreport/internal/store/model"

	"github.com/gin-gonic/gin"
)

// RegenerateFunc 重新生成某个 execution 的报告。
type RegenerateFunc func(ctx context.Context, executionID string) error

// Router 暴露 /api/reports 查询接口。
type Router struct {
	runs       store.RunRepository
	steps      store.StepIndex
	regenerate RegenerateFunc
}

func NewRouter(runs store.RunRepository, steps store.StepIndex, regenerate RegenerateFunc) *Router {
	return &Router{runs: runs, steps: steps, regenerate: regenerate}
}

// Register 将路由挂载到给定分组下。
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("", r.handleList)
	group.GET("/:id", r.handleDetail)
	group.GET("/:id/graph", r.handleGraph)
	group.GET("/:id/failures", r.handleFailures)
	group.GET("/:id/features/:feature/steps", r.handleFeatureSteps)
	if r.regenerate != nil {
		group.POST("/:id/regenerate", r.handleRegenerate)
	}
}

type runSummary struct {
	ExecutionID     string          `json:"execution_id"`
	Engine          string          `json:"engine,omitempty"`
	TotalDevices    int             `json:"totalDevices"`
	TotalScenarios  int             `json:"totalScenarios"`
	PassedScenarios int             `json:"passedScenarios"`
	FailedScenarios int             `json:"failedScenarios"`
	FeatureCount    int             `json:"feature_count"`
	Devices         json.RawMessage `json:"devices,omitempty"`
	UpdatedAt       int64           `json:"updated_at"`
}

func summarize(m model.ReportRunModel) runSummary {
	return runSummary{
		ExecutionID:     m.ExecutionID,
		Engine:          m.Engine,
		TotalDevices:    m.TotalDevices,
		TotalScenarios:  m.TotalScenarios,
		PassedScenarios: m.PassedScenarios,
		FailedScenarios: m.FailedScenarios,
		FeatureCount:    m.FeatureCount,
		Devices:         rawOrNil(m.DevicesJSON),
		UpdatedAt:       m.UpdatedAtUnix,
	}
}

func (r *Router) handleList(c *gin.Context) {
	if r.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "运行历史未启用"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}
	rows, err := r.runs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		logger.Errorf("reports http: list runs failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items := make([]runSummary, 0, len(rows))
	for _, row := range rows {
		items = append(items, summarize(row))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (r *Router) findRun(c *gin.Context) (*model.ReportRunModel, bool) {
	if r.runs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "运行历史未启用"})
		return nil, false
	}
	id := strings.TrimSpace(c.Param("id"))
	run, err := r.runs.FindByExecution(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "execution not found", "execution_id": id})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return run, true
}

// handleDetail 返回完整的 consolidated report JSON。
func (r *Router) handleDetail(c *gin.Context) {
	run, ok := r.findRun(c)
	if !ok {
		return
	}
	if len(run.ReportJSON) == 0 {
		c.JSON(http.StatusOK, summarize(*run))
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", run.ReportJSON)
}

func (r *Router) handleGraph(c *gin.Context) {
	run, ok := r.findRun(c)
	if !ok {
		return
	}
	graph := []byte(run.GraphJSON)
	if len(graph) == 0 || string(graph) == "null" {
		graph = []byte("[]")
	}
	if name := strings.TrimSpace(c.Query("feature")); name != "" {
		var graphs []map[string]json.RawMessage
		if err := json.Unmarshal(graph, &graphs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		for _, g := range graphs {
			var gname string
			_ = json.Unmarshal(g["name"], &gname)
			if gname == name {
				c.JSON(http.StatusOK, g)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "feature not found", "feature": name})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", graph)
}

func (r *Router) handleFailures(c *gin.Context) {
	if r.steps == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "步骤索引未启用"})
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	rows, err := r.steps.Failures(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []model.StepRow{}
	}
	c.JSON(http.StatusOK, gin.H{"execution_id": id, "items": rows, "count": len(rows)})
}

func (r *Router) handleFeatureSteps(c *gin.Context) {
	if r.steps == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "步骤索引未启用"})
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	feature := strings.TrimSpace(c.Param("feature"))
	rows, err := r.steps.Steps(c.Request.Context(), id, feature)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if rows == nil {
		rows = []model.StepRow{}
	}
	c.JSON(http.StatusOK, gin.H{"execution_id": id, "feature_id": feature, "items": rows})
}

func (r *Router) handleRegenerate(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "execution id required"})
		return
	}
	if err := r.regenerate(c.Request.Context(), id); err != nil {
		logger.Warnf("reports http: regenerate %s failed: %v", id, err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "execution_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "execution_id": id})
}

func rawOrNil(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	return json.RawMessage(b)
}
