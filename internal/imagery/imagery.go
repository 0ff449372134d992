// Package imagery lists the SOHO real-time solar image channels the
// dashboard can display. Images are fetched by the browser straight from
// the SOHO servers; this package only maps a selection to a descriptor.
package imagery

// BaseURL is the SOHO real-time image root.
const BaseURL = "https://soho.nascom.nasa.gov/data/realtime"

// Channel describes one solar imagery channel.
type Channel struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

func latest(path string) string {
	return BaseURL + "/" + path + "/1024/latest.jpg"
}

// channels is the fixed selection set, in dropdown order.
var channels = []Channel{
	{ID: "eit-171", Title: "EIT 171", URL: latest("eit_171")},
	{ID: "eit-195", Title: "EIT 195", URL: latest("eit_195")},
	{ID: "eit-284", Title: "EIT 284", URL: latest("eit_284")},
	{ID: "eit-304", Title: "EIT 304", URL: latest("eit_304")},
	{ID: "hmi-mag", Title: "SDO/HMI Magnetogram", URL: latest("hmi_mag")},
	{ID: "c2", Title: "LASCO C2", URL: latest("c2")},
	{ID: "c3", Title: "LASCO C3", URL: latest("c3")},
}

// Realtime is the HMI intensitygram shown permanently at the top of the page.
var Realtime = Channel{ID: "sun-img", Title: "HMI Intensitygram", URL: latest("hmi_igr")}

// Select returns the channel whose title equals key.
func Select(key string) (Channel, bool) {
	for _, c := range channels {
		if c.Title == key {
			return c, true
		}
	}
	return Channel{}, false
}

// All returns every selectable channel in dropdown order.
func All() []Channel {
	out := make([]Channel, len(channels))
	copy(out, channels)
	return out
}

// Titles returns the dropdown option labels.
func Titles() []string {
	out := make([]string, len(channels))
	for i, c := range channels {
		out[i] = c.Title
	}
	return out
}
