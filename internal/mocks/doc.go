// Package mocks provides shared test doubles for the service interfaces the
// HTTP layer depends on.
//
// Each mock has a function field per method for custom behavior, default
// return values used when the function is nil, and call tracking guarded by a
// mutex:
//
//	svc := &mocks.MockStudyService{
//	    SubmitBatchFn: func(ctx context.Context, userID uuid.UUID, b study.Batch) (*study.BatchResult, error) {
//	        return &study.BatchResult{ReviewEntries: len(b.Reviews)}, nil
//	    },
//	}
package mocks
