package disc

import "testing"

func TestParseBlkid(t *testing.T) {
	output := `/dev/sr0: LABEL="MOVIE" UUID="ABCD-1234" TYPE="udf"
/dev/sda1: LABEL="root disk" UUID="1111-2222" TYPE="ext4"
`
	parsed := ParseBlkid(output)
	if len(parsed) != 2 {
		t.Fatalf("devices = %d", len(parsed))
	}
	sr0 := parsed["/dev/sr0"]
	if sr0["LABEL"] != "MOVIE" || sr0["UUID"] != "ABCD-1234" || sr0["TYPE"] != "udf" {
		t.Fatalf("sr0 params = %v", sr0)
	}
	if parsed["/dev/sda1"]["LABEL"] != "root disk" {
		t.Fatalf("quoted values must keep spaces: %v", parsed["/dev/sda1"])
	}
}

func TestParseBlkidSkipsMalformedLines(t *testing.T) {
	parsed := ParseBlkid("garbage without separator\n\n/dev/sr0: LABEL=\"X\" UUID=\"Y\"\n")
	if len(parsed) != 1 {
		t.Fatalf("parsed = %v", parsed)
	}
}

func TestMetadataIdentity(t *testing.T) {
	params := ParseBlkidParams(`LABEL="MOVIE" UUID="ABCD-1234"`)
	if got := MetadataIdentity(params); got != "MOVIE-ABCD-1234" {
		t.Fatalf("identity = %q", got)
	}
}
