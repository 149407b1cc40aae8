// Package testing provides standardised tests and benchmarks for
// storage media that satisfy the medium.IMedium interface.
//
// The package contains:
//   - RunMediumTests: a conformance suite for the IMedium contract (overwrites,
//     removal, ordered key enumeration, counting, closing, concurrent writes)
//   - RunMediumBenchmarks: throughput measurements for the common operations
//
// Example usage:
//
//	func Test(t *testing.T) {
//		mediumtesting.RunMediumTests(t, "MyMedium", func() (medium.IMedium, error) {
//			return NewMyMedium(), nil
//		})
//	}
package testing
