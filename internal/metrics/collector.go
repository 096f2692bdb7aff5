package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jonathan/salon-copy/internal/featured"
	"github.com/jonathan/salon-copy/internal/types"
)

var (
	featuredKeywordsDesc = prometheus.NewDesc(
		namespace+"_featured_keywords",
		"Featured keywords currently loaded, by gender.",
		[]string{"gender"},
		nil,
	)
	featuredAvailableDesc = prometheus.NewDesc(
		namespace+"_featured_registry_available",
		"1 when the featured keyword registry holds at least one entry.",
		nil,
		nil,
	)
	featuredWarningsDesc = prometheus.NewDesc(
		namespace+"_featured_registry_warnings",
		"Entries skipped during the last successful registry load.",
		nil,
		nil,
	)
)

// RegistryCollector reads the featured keyword registry on each scrape.
type RegistryCollector struct {
	registry *featured.Registry
}

// Describe sends the metric descriptors to the channel.
func (c *RegistryCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- featuredKeywordsDesc
	ch <- featuredAvailableDesc
	ch <- featuredWarningsDesc
}

// Collect emits the registry's current state.
func (c *RegistryCollector) Collect(ch chan<- prometheus.Metric) {
	h := c.registry.Health()

	for _, g := range []types.Gender{types.GenderLadies, types.GenderMens} {
		ch <- prometheus.MustNewConstMetric(featuredKeywordsDesc, prometheus.GaugeValue,
			float64(len(c.registry.ByGender(g))), string(g))
	}

	available := 0.0
	if h.IsAvailable {
		available = 1
	}
	ch <- prometheus.MustNewConstMetric(featuredAvailableDesc, prometheus.GaugeValue, available)
	ch <- prometheus.MustNewConstMetric(featuredWarningsDesc, prometheus.GaugeValue, float64(h.WarningsCount))
}
