// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authclient

import (
	"context"
	"net/http"

	"github.com/taibuivan/yomira-id/internal/platform/constants"
	requestutil "github.com/taibuivan/yomira-id/internal/platform/request"
)

type visitorKey struct{}

type visitor struct {
	userAgent string
	ipAddress string
}

// WithVisitor records the browser behind request so API calls made with the
// returned context carry its user agent and address.
func WithVisitor(ctx context.Context, request *http.Request) context.Context {
	return context.WithValue(ctx, visitorKey{}, visitor{
		userAgent: request.UserAgent(),
		ipAddress: requestutil.ClientIP(request),
	})
}

func applyVisitor(ctx context.Context, request *http.Request) {
	current, ok := ctx.Value(visitorKey{}).(visitor)
	if !ok {
		return
	}
	if current.userAgent != "" {
		request.Header.Set("User-Agent", current.userAgent)
	}
	if current.ipAddress != "" {
		request.Header.Set(constants.HeaderXRealIP, current.ipAddress)
	}
}
