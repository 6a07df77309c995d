// Package models defines the core domain models for Billed.
//
// # Models
//
//   - Bill: an expense claim submitted by an employee, with its receipt
//   - FileRef: where a bill's receipt lives once uploaded
//   - User: a registered account (employee or admin)
//
// # Design Principles
//
// 1. **Money is exact**: amounts use decimal.Decimal, never float64
// 2. **Dates are calendar dates**: Date carries no time of day or zone
// 3. **Avoid circular references**: relationships use ID or email strings
package models
