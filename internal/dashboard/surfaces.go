package dashboard

import (
	airquality "voc-dashboard/internal/airquality/domain"
	"voc-dashboard/internal/monitorapi"
	telemetry "voc-dashboard/internal/telemetry/domain"
)

// Renderer consumes series snapshots. The charting surface behind it is
// opaque to the engine.
type Renderer interface {
	Render(snapshot telemetry.Snapshot)
}

// AdvisorySurface consumes the air-quality rating and its advisory text.
type AdvisorySurface interface {
	ShowAdvisory(category airquality.Category, advice string)
}

// StatsSurface consumes rolling averages and window extremes.
type StatsSurface interface {
	RenderAverages(averages monitorapi.Averages)
	RenderMinMax(minmax monitorapi.MinMax)
}
