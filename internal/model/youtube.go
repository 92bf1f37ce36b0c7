package model

// YouTubeStations maps a station name to the video/channel identifier
// the external resolver uses to find its current live stream.
type YouTubeStations map[string]string
