// Package testsupport provides helpers shared by package tests: isolated
// configs rooted in t.TempDir, a store opener with cleanup, and small file
// utilities.
package testsupport
