package scanner

import (
	"context"
	"errors"

	"github.com/gabapcia/txalert/internal/pkg/logger"
)

func logFetchError(ctx context.Context, err error) {
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return
	}

	var fe *FetchError
	if errors.As(err, &fe) {
		logger.Error(ctx, "scan tick failed", "chain", fe.Chain, "query", fe.Query, "error", fe.Err)
		return
	}

	logger.Error(ctx, "scan tick failed", "error", err)
}
