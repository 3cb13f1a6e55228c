// Package services holds the small vocabulary shared by the pipeline and its
// collaborators: context tags for video ids, stages, and pass run ids, and
// the error markers that decide whether a failed item is retried.
package services
