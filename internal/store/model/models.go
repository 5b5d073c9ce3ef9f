package model

import (
	"time"

	"gorm.io/datatypes"
)

// ReportRunModel 对应 report_runs 表，每个 execution 一行。
type ReportRunModel struct {
	ID              int64          `gorm:"column:id;primaryKey"`
	ExecutionID     string         `gorm:"column:execution_id;uniqueIndex"`
	Engine          string         `gorm:"column:engine"`
	TotalDevices    int            `gorm:"column:total_devices"`
	TotalScenarios  int            `gorm:"column:total_scenarios"`
	PassedScenarios int            `gorm:"column:passed_scenarios"`
	FailedScenarios int            `gorm:"column:failed_scenarios"`
	FeatureCount    int            `gorm:"column:feature_count"`
	DevicesJSON     datatypes.JSON `gorm:"column:devices_json;type:TEXT"`
	GraphJSON       datatypes.JSON `gorm:"column:graph_json;type:TEXT"`
	ReportJSON      datatypes.JSON `gorm:"column:report_json;type:TEXT"`
	CreatedAtUnix   int64          `gorm:"column:created_at"`
	UpdatedAtUnix   int64          `gorm:"column:updated_at"`

	CreatedAt time.Time `gorm:"-"`
	UpdatedAt time.Time `gorm:"-"`
}

func (ReportRunModel) TableName() string { return "report_runs" }

// StepRow 是 step 索引中的一行：某 execution 下某设备在某 feature 的第 Position 个步骤。
type StepRow struct {
	ExecutionID string `json:"execution_id"`
	FeatureID   string `json:"feature_id"`
	FeatureName string `json:"feature_name"`
	DeviceID    string `json:"device_id"`
	DeviceModel string `json:"device_model"`
	Position    int    `json:"position"`
	Keyword     string `json:"keyword"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Duration    int64  `json:"duration"`
}
