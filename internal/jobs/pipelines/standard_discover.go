package pipelines

import (
	"fmt"

	types "github.com/strivekit/strivekit-backend/internal/domain"
	"github.com/strivekit/strivekit-backend/internal/jobs/runtime"
	"github.com/strivekit/strivekit-backend/internal/pkg/dbctx"
	"github.com/strivekit/strivekit-backend/internal/pkg/logger"
	"github.com/strivekit/strivekit-backend/internal/plangen/standards"
)

// StandardDiscover searches for a reference standard for one metric and
// stores it when the source passes the evidence gate. A search that finds
// nothing is still a successful run; only a malformed payload fails the job.
type StandardDiscover struct {
	discovery standards.DiscoveryService
	log       *logger.Logger
}

func NewStandardDiscover(discovery standards.DiscoveryService, baseLog *logger.Logger) *StandardDiscover {
	return &StandardDiscover{discovery: discovery, log: baseLog.With("pipeline", "StandardDiscover")}
}

func (p *StandardDiscover) Type() string { return types.JobTypeStandardDiscover }

func (p *StandardDiscover) Run(jc *runtime.Context) error {
	metricKey := jc.PayloadString("metric_key")
	if metricKey == "" {
		jc.Fail("validate", fmt.Errorf("payload missing metric_key"))
		return nil
	}
	context := jc.PayloadString("context")

	jc.Progress("discover", 20)
	id := p.discovery.DiscoverAndStore(dbctx.Context{Ctx: jc.Ctx}, metricKey, context)

	result := map[string]any{"metric_key": metricKey, "stored": id != nil}
	if id != nil {
		result["standard_id"] = id.String()
	}
	jc.Succeed("done", result)
	return nil
}
