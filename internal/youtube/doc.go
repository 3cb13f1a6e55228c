// Package youtube lists the authenticated user's liked videos through the
// YouTube Data API v3 and manages the OAuth token that authorizes it.
//
// LikedVideos implements the pipeline discovery source one page at a time.
// Auth loads Google client secrets, keeps the token file current as the
// access token refreshes, and drives the one-time consent flow behind
// `tubecron auth login`.
package youtube
