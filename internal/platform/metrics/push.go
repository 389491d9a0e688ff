package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends everything g gathers to a Pushgateway at url under job,
// replacing the previous push with the same grouping labels. grouping is
// a flat list of label name/value pairs.
func Push(ctx context.Context, url, job string, g prometheus.Gatherer, grouping ...string) error {
	if len(grouping)%2 != 0 {
		return fmt.Errorf("push metrics: odd grouping label list %v", grouping)
	}
	p := push.New(url, job).Gatherer(g)
	for i := 0; i < len(grouping); i += 2 {
		p = p.Grouping(grouping[i], grouping[i+1])
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
