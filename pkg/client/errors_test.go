package client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/creeeasy/online-store-sub000/pkg/models"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		fields []models.FieldError
		want   ErrorKind
	}{
		{http.StatusBadRequest, nil, KindBadRequest},
		{http.StatusUnauthorized, nil, KindUnauthorized},
		{http.StatusForbidden, nil, KindForbidden},
		{http.StatusNotFound, nil, KindNotFound},
		{http.StatusConflict, nil, KindConflict},
		{http.StatusUnprocessableEntity, nil, KindValidation},
		{http.StatusTooManyRequests, nil, KindRateLimited},
		{http.StatusInternalServerError, nil, KindServer},
		{http.StatusBadGateway, nil, KindServer},
		{http.StatusTeapot, nil, KindUnknown},
		// Field errors force the validation kind regardless of status.
		{http.StatusBadRequest, []models.FieldError{{Field: "name"}}, KindValidation},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifyStatus(tt.status, tt.fields), "status %d", tt.status)
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []ErrorKind{KindNetwork, KindTimeout, KindServer, KindUnknown}
	for _, kind := range retryable {
		assert.True(t, IsRetryable(&APIError{Kind: kind}), string(kind))
	}

	terminal := []ErrorKind{KindBadRequest, KindUnauthorized, KindForbidden, KindNotFound, KindConflict, KindValidation, KindRateLimited}
	for _, kind := range terminal {
		assert.False(t, IsRetryable(&APIError{Kind: kind}), string(kind))
	}

	// 4xx statuses with no dedicated kind are still client errors.
	for _, status := range []int{402, 405, 410, 418} {
		assert.False(t, IsRetryable(&APIError{Kind: KindUnknown, Status: status}), fmt.Sprintf("status %d", status))
	}

	assert.False(t, IsRetryable(errors.New("plain error")))
	assert.False(t, IsRetryable(nil))
}

func TestAPIErrorMessage(t *testing.T) {
	withStatus := &APIError{Kind: KindNotFound, Status: 404, Message: "Product not found"}
	assert.Equal(t, "not_found (404): Product not found", withStatus.Error())

	transport := &APIError{Kind: KindNetwork, Message: "connection refused"}
	assert.Equal(t, "network: connection refused", transport.Error())
}

func TestAsAPIError(t *testing.T) {
	apiErr := &APIError{Kind: KindServer, Status: 500}
	got, ok := AsAPIError(apiErr)
	assert.True(t, ok)
	assert.Equal(t, apiErr, got)

	_, ok = AsAPIError(errors.New("other"))
	assert.False(t, ok)
}
