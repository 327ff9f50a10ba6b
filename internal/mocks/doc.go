// Package mocks provides shared test doubles for the service interfaces.
//
// Function-field mocks fall back to their default fields when a function is
// not set:
//
//	jwt := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return &auth.Claims{UserID: userID}, nil
//	    },
//	}
//
// MockEventEmitter is built on testify's mock.Mock for expectation-style tests.
package mocks
