package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"path", "method", "status"})

	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posts_created_total",
		Help: "Total number of posts created",
	})

	PostsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posts_updated_total",
		Help: "Total number of posts updated",
	})

	PostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "posts_deleted_total",
		Help: "Total number of posts deleted",
	})

	MutationsDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "post_mutations_denied_total",
		Help: "Post mutations rejected by the authorization policy",
	}, []string{"operation"})
)
