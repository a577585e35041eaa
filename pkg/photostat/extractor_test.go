package photostat_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aben20807/exif-count/internal/testutil"
	"github.com/aben20807/exif-count/pkg/photostat"
)

func TestExifExtractor_CompleteMetadata(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.CreatePhoto(t, fs, "/photos/a.jpg", testutil.DefaultFixture())

	record, err := photostat.NewExifExtractor(fs).Extract(context.Background(), "/photos/a.jpg")
	require.NoError(t, err)
	require.NotNil(t, record)

	assert.Equal(t, "/photos/a.jpg", record.Path)
	assert.Equal(t, map[photostat.Field]string{
		photostat.CaptureDate:  "2023-05-01",
		photostat.CameraModel:  "X-T4",
		photostat.LensModel:    "XF35mmF1.4 R",
		photostat.Aperture:     "2.8",
		photostat.ExposureTime: "1/200",
		photostat.ISO:          "400",
		photostat.FocalLength:  "35",
	}, record.Values)
}

func TestExifExtractor_Normalization(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(f *testutil.ExifFixture)
		field  photostat.Field
		want   string
	}{
		{"exposure in lowest terms", func(f *testutil.ExifFixture) { f.ExposureTime = [2]uint32{10, 2000} }, photostat.ExposureTime, "1/200"},
		{"whole second exposure", func(f *testutil.ExifFixture) { f.ExposureTime = [2]uint32{2, 1} }, photostat.ExposureTime, "2"},
		{"aperture decimal", func(f *testutil.ExifFixture) { f.FNumber = [2]uint32{18, 10} }, photostat.Aperture, "1.8"},
		{"focal length fraction", func(f *testutil.ExifFixture) { f.FocalLength = [2]uint32{185, 10} }, photostat.FocalLength, "18.5"},
		{"date keeps day only", func(f *testutil.ExifFixture) { f.DateTimeOriginal = "2021:12:31 23:59:59" }, photostat.CaptureDate, "2021-12-31"},
		{"model with spaces", func(f *testutil.ExifFixture) { f.Model = "Canon EOS R5" }, photostat.CameraModel, "Canon EOS R5"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			fixture := testutil.DefaultFixture()
			tc.mutate(&fixture)
			testutil.CreatePhoto(t, fs, "/p/img.jpg", fixture)

			record, err := photostat.NewExifExtractor(fs).Extract(context.Background(), "/p/img.jpg")
			require.NoError(t, err)
			assert.Equal(t, tc.want, record.Values[tc.field])
		})
	}
}

func TestExifExtractor_TIFFInput(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.CreateDummyFile(t, fs, "/p/img.tiff", testutil.DefaultFixture().TIFF())

	record, err := photostat.NewExifExtractor(fs).Extract(context.Background(), "/p/img.tiff")
	require.NoError(t, err)
	assert.Equal(t, "X-T4", record.Values[photostat.CameraModel])
}

func TestExifExtractor_Failures(t *testing.T) {
	incomplete := testutil.DefaultFixture()
	incomplete.Omit = []string{"LensModel"}

	testCases := []struct {
		name    string
		content []byte
		create  bool
		wantErr error
	}{
		{"missing lens model", incomplete.JPEG(), true, photostat.ErrIncompleteMetadata},
		{"jpeg without exif", testutil.PlainJPEG(), true, photostat.ErrNoMetadata},
		{"not an image", []byte("just some text"), true, photostat.ErrNoMetadata},
		{"empty file", []byte{}, true, photostat.ErrNoMetadata},
		{"file does not exist", nil, false, photostat.ErrReadFailed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tc.create {
				testutil.CreateDummyFile(t, fs, "/p/img.jpg", tc.content)
			}
			record, err := photostat.NewExifExtractor(fs).Extract(context.Background(), "/p/img.jpg")
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, record)
		})
	}
}

func TestExifExtractor_CancelledContext(t *testing.T) {
	fs := afero.NewMemMapFs()
	testutil.CreatePhoto(t, fs, "/p/img.jpg", testutil.DefaultFixture())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := photostat.NewExifExtractor(fs).Extract(ctx, "/p/img.jpg")
	require.Error(t, err)
	assert.ErrorIs(t, err, photostat.ErrReadFailed)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeCaptureDate(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"2023:05:01 12:30:00", "2023-05-01"},
		{"2023:05:01", "2023-05-01"},
		{"2023:05:01 12:30:00\x00", "2023-05-01"},
		{"", ""},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, photostat.NormalizeCaptureDate(tc.in), "input %q", tc.in)
	}
}

func TestStripNulls(t *testing.T) {
	assert.Equal(t, "ILCE-7M3", photostat.StripNulls("ILCE-7M3\x00\x00\x00"))
	assert.Equal(t, "abc", photostat.StripNulls("a\x00b\x00c"))
}
