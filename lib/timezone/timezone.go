package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("America/Los_Angeles")
	if err != nil {
		panic(err)
	}
}

// Now reads the wall clock in district-local time. Sync log timestamps
// and schedule evaluation must not shift with whatever region the
// process happens to run in.
func Now() time.Time {
	return time.Now().In(Location)
}
