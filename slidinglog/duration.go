package slidinglog

import "time"

// Unit helpers for readable call sites:
//
//	slidinglog.New[string](100, slidinglog.Minutes(5))

func Seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func Minutes(n int) time.Duration { return time.Duration(n) * time.Minute }

func Hours(n int) time.Duration { return time.Duration(n) * time.Hour }

func Days(n int) time.Duration { return Hours(n * 24) }

func Weeks(n int) time.Duration { return Days(n * 7) }
