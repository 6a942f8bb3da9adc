package poll

// pad is cache line padding to prevent false sharing between adjacent
// atomic fields that are written by different threads.
type pad [64]byte
