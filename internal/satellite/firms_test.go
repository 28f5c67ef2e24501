package satellite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const viirsCSV = `latitude,longitude,bright_ti4,scan,track,acq_date,acq_time,satellite,confidence,version,bright_ti5,frp,daynight
15.5,121.2,330.5,0.5,0.5,2024-03-15,0512,N,n,2.0NRT,295.1,3.2,D
16.1,121.8,345.2,0.5,0.5,2024-03-15,0512,N,h,2.0NRT,300.4,8.1,D
`

const modisCSV = `latitude,longitude,brightness,scan,track,acq_date,acq_time,satellite,confidence,version,bright_t31,frp,daynight
15.5,121.2,330.5,1.1,1.0,2024-03-15,0512,Terra,85,6.1NRT,295.1,12.4,D
`

func TestParseFireCSVViirs(t *testing.T) {
	fires, err := ParseFireCSV([]byte(viirsCSV))
	require.NoError(t, err)
	require.Len(t, fires, 2)

	assert.Equal(t, 15.5, fires[0].Latitude)
	assert.Equal(t, 121.2, fires[0].Longitude)
	assert.Equal(t, 330.5, fires[0].Brightness)
	assert.Equal(t, "2024-03-15", fires[0].AcqDate)
	assert.Equal(t, "n", fires[0].Confidence)
	assert.Equal(t, "h", fires[1].Confidence)
}

func TestParseFireCSVModisHeaderPatch(t *testing.T) {
	// MODIS calls the column "brightness"; the parser maps it onto the same
	// field the VIIRS feed fills.
	fires, err := ParseFireCSV([]byte(modisCSV))
	require.NoError(t, err)
	require.Len(t, fires, 1)

	assert.Equal(t, 330.5, fires[0].Brightness)
	assert.Equal(t, "85", fires[0].Confidence)
}

func TestFiresToGeoJSON(t *testing.T) {
	fires := []FireDetection{
		{Latitude: 15.5, Longitude: 121.2, Brightness: 330.5, AcqDate: "2024-03-15", Confidence: "n"},
	}

	collection := FiresToGeoJSON(fires)
	require.Len(t, collection.Features, 1)

	feature := collection.Features[0]
	point := feature.Geometry.Bound().Min
	assert.Equal(t, 121.2, point[0], "GeoJSON order is lon,lat")
	assert.Equal(t, 15.5, point[1])
	assert.Equal(t, 330.5, feature.Properties["brightness"])
	assert.Equal(t, "n", feature.Properties["confidence"])
}

func TestFiresToGeoJSONEmpty(t *testing.T) {
	collection := FiresToGeoJSON(nil)
	assert.Empty(t, collection.Features)
}
