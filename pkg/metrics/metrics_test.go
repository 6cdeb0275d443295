package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsOptions(t *testing.T) {
	Convey("Given metrics options", t, func() {
		Convey("When creating options", func() {
			namespaceOpt := WithNamespace("test-namespace")
			subsystemOpt := WithSubsystem("test-subsystem")
			metricPrefixOpt := WithMetricPrefix("test-prefix")
			histogramBucketsOpt := WithHistogramBuckets([]float64{0.1, 0.5, 1.0})
			metricsEnabledOpt := WithMetricsEnabled(true)
			refreshIntervalOpt := WithRefreshInterval(5 * time.Second)
			customLabelsOpt := WithCustomLabels(map[string]string{"env": "test"})

			Convey("Then they should be valid functions", func() {
				So(namespaceOpt, ShouldNotBeNil)
				So(subsystemOpt, ShouldNotBeNil)
				So(metricPrefixOpt, ShouldNotBeNil)
				So(histogramBucketsOpt, ShouldNotBeNil)
				So(metricsEnabledOpt, ShouldNotBeNil)
				So(refreshIntervalOpt, ShouldNotBeNil)
				So(customLabelsOpt, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test", "version": "1.0"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with empty namespace and subsystem", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the defaults should be kept", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "fungo")
				So(manager.subsystem, ShouldEqual, "swings")
			})
		})

		Convey("When creating with nil histogram buckets", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithHistogramBuckets(nil), WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with zero refresh interval", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithRefreshInterval(0), WithPrometheusRegistry(registry))

			Convey("Then the default interval should be kept", func() {
				So(manager, ShouldNotBeNil)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording ingest metrics", func() {
			Convey("Then it should record ingested swings", func() {
				So(func() {
					RecordSwingIngested()
					RecordSwingIngested()
					RecordSwingIngested()
				}, ShouldNotPanic)
			})

			Convey("And it should record duplicate swings", func() {
				So(func() {
					RecordSwingDuplicate()
					RecordSwingDuplicate()
				}, ShouldNotPanic)
			})

			Convey("And it should record rejected swings", func() {
				So(func() {
					RecordSwingRejected()
					RecordSwingRejected()
				}, ShouldNotPanic)
			})

			Convey("And it should record swing distances", func() {
				So(func() {
					RecordSwingDistance(120.0)
					RecordSwingDistance(415.5)
					RecordSwingDistance(38000.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording bus metrics", func() {
			Convey("Then it should record publishes and deliveries", func() {
				So(func() {
					RecordBusPublish()
					RecordBusDelivery()
					RecordBusDelivery()
					RecordBusDeliveryPanic()
				}, ShouldNotPanic)
			})

			Convey("And it should track subscriber counts", func() {
				So(func() {
					UpdateBusSubscriberCount(0)
					UpdateBusSubscriberCount(5)
					UpdateBusSubscriberCount(2)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording stream metrics", func() {
			Convey("Then it should track connection lifecycle", func() {
				So(func() {
					IncStreamConnections()
					IncStreamConnections()
					DecStreamConnections()
				}, ShouldNotPanic)
			})

			Convey("And it should record keep-alives and drops", func() {
				So(func() {
					RecordStreamKeepAlive()
					RecordStreamDroppedEvent()
					RecordStreamDroppedEvent()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording HTTP metrics", func() {
			Convey("Then it should record HTTP requests", func() {
				So(func() {
					RecordHTTPRequest("/healthz", "GET", "200")
					RecordHTTPRequest("/swings", "POST", "202")
					RecordHTTPRequest("/leaderboard", "GET", "200")
				}, ShouldNotPanic)
			})

			Convey("And it should record HTTP request duration", func() {
				So(func() {
					RecordHTTPRequestDuration("/healthz", "GET", "200", 5.0)
					RecordHTTPRequestDuration("/swings", "POST", "202", 10.0)
					RecordHTTPRequestDuration("/leaderboard", "GET", "200", 15.0)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording error metrics", func() {
			Convey("Then it should record leaderboard errors", func() {
				So(func() {
					RecordLeaderboardError()
					RecordLeaderboardError()
				}, ShouldNotPanic)
			})

			Convey("And it should record errors by component", func() {
				So(func() {
					RecordErrorByComponent("http", "bad_request")
					RecordErrorByComponent("repository", "not_found")
					RecordErrorByComponent("queue", "full")
				}, ShouldNotPanic)
			})
		})

		Convey("When recording repository metrics", func() {
			Convey("Then it should update the record count", func() {
				So(func() {
					UpdateRepositoryRecordsTotal(100)
					UpdateRepositoryRecordsTotal(250)
				}, ShouldNotPanic)
			})

			Convey("And it should record store latencies", func() {
				So(func() {
					RecordRepositoryUpdateLatency(5.0)
					RecordRepositoryQueryLatency(2.0)
					RecordLeaderboardUpdate()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording queue metrics", func() {
			Convey("Then it should update queue gauges", func() {
				So(func() {
					UpdateQueueSize(1000)
					UpdateQueueCapacity(10000)
					UpdateQueueUtilization(0.1)
				}, ShouldNotPanic)
			})

			Convey("And it should record queue throughput", func() {
				So(func() {
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
				}, ShouldNotPanic)
			})
		})

		Convey("When recording worker metrics", func() {
			So(func() {
				UpdateWorkerCount(8)
				RecordWorkerProcessingLatency(50.0)
				RecordWorkerError()
			}, ShouldNotPanic)
		})

		Convey("When recording system metrics", func() {
			So(func() {
				UpdateSystemMemoryUsage(1024 * 1024 * 100)
				UpdateSystemGoroutineCount(100)
				RecordSystemGCPauseTime(1.5)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsEdgeCases(t *testing.T) {
	Convey("Given metrics edge cases", t, func() {
		Convey("When recording metrics with edge values", func() {
			Convey("And using zero values", func() {
				So(func() {
					UpdateQueueSize(0)
					UpdateWorkerCount(0)
					UpdateRepositoryRecordsTotal(0)
					RecordSwingDistance(0.0)
					RecordHTTPRequestDuration("/test", "GET", "200", 0.0)
				}, ShouldNotPanic)
			})

			Convey("And using negative values", func() {
				So(func() {
					UpdateQueueSize(-100)
					UpdateWorkerCount(-10)
					UpdateRepositoryRecordsTotal(-1000)
				}, ShouldNotPanic)
			})

			Convey("And using very large values", func() {
				So(func() {
					UpdateQueueSize(1000000)
					UpdateWorkerCount(10000)
					RecordSwingDistance(1e9)
					RecordHTTPRequestDuration("/test", "GET", "200", 30000.0)
				}, ShouldNotPanic)
			})

			Convey("And using empty strings in labels", func() {
				So(func() {
					RecordHTTPRequest("", "", "200")
					RecordHTTPRequestDuration("", "", "200", 10.0)
					RecordErrorByComponent("", "")
				}, ShouldNotPanic)
			})

			Convey("And using special characters in labels", func() {
				So(func() {
					RecordHTTPRequest("/leaderboard?limit=10", "GET", "200")
					RecordErrorByComponent("component-with-dash", "error_with_underscore")
				}, ShouldNotPanic)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func(id int) {
					for j := 0; j < 100; j++ {
						RecordSwingIngested()
						UpdateQueueSize(1000 + j)
						RecordSwingDistance(float64(j) * 4.2)
						RecordHTTPRequest("/test", "GET", "200")
					}
					done <- true
				}(i)
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then it should handle concurrent access without panics", func() {
				So(true, ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRegistry(t *testing.T) {
	Convey("Given the service registry", t, func() {
		Convey("When fetching the registry", func() {
			registry := GetRegistry()

			Convey("Then it should be the custom registry", func() {
				So(registry, ShouldNotBeNil)
				So(registry, ShouldEqual, customRegistry)
			})

			Convey("And it should gather the registered metric families", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}
