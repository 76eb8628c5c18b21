// Package mocks provides mock implementations of the ports used across discux.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for the port interfaces.
// The mocks are generated using go:generate directives and provide a fluent API for setting up test expectations.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	client := mocks.NewMockContentClient(ctrl)
//	client.EXPECT().Get(gomock.Any(), "/v1/post", gomock.Any()).Return(nil, nil)
package mocks

// Generate mock for ContentClient interface from internal/ports package.
// This creates MockContentClient with methods for all ContentClient interface methods:
// Get, Post
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=content_client_mock.go github.com/gutp/discux/internal/ports ContentClient
