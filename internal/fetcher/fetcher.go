package fetcher

import (
	"context"

	"github.com/parkscout/parkscout/pkg/failure"
	"github.com/parkscout/parkscout/pkg/retry"
)

type Fetcher interface {
	Fetch(
		ctx context.Context,
		fetchParam FetchParam,
		retryParam retry.RetryParam,
	) (FetchResult, failure.ClassifiedError)
}
