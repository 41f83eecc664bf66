package manifest

import "testing"

func TestBuildEmptyWhileWelcome(t *testing.T) {
	if got := Build("export default 1", true); got != nil {
		t.Errorf("manifest = %v, want nil during welcome", got)
	}
}

func TestBuildEmptyWithoutCode(t *testing.T) {
	if got := Build("", false); got != nil {
		t.Errorf("manifest = %v, want nil without code", got)
	}
}

func TestBuildSingleFile(t *testing.T) {
	got := Build("export default 1", false)
	if len(got) != 1 || got[AppPath] != "export default 1" {
		t.Errorf("manifest = %v", got)
	}
}
