package resources

import "testing"

func TestConflictsFileOverlap(t *testing.T) {
	cases := []struct {
		name string
		a, b Footprint
		want bool
	}{
		{
			name: "disjoint reads never conflict",
			a:    Footprint{Files: &Files{Mode: FileRead, Paths: []string{"a"}}},
			b:    Footprint{Files: &Files{Mode: FileRead, Paths: []string{"b"}}},
			want: false,
		},
		{
			name: "write overlapping read conflicts",
			a:    Footprint{Files: &Files{Mode: FileWrite, Paths: []string{"a"}}},
			b:    Footprint{Files: &Files{Mode: FileRead, Paths: []string{"a"}}},
			want: true,
		},
		{
			name: "write disjoint from read does not conflict",
			a:    Footprint{Files: &Files{Mode: FileWrite, Paths: []string{"a"}}},
			b:    Footprint{Files: &Files{Mode: FileRead, Paths: []string{"b"}}},
			want: false,
		},
		{
			name: "all-files write conflicts with any read",
			a:    Footprint{Files: &Files{Mode: FileWrite, AllFiles: true}},
			b:    Footprint{Files: &Files{Mode: FileRead, Paths: []string{"z"}}},
			want: true,
		},
		{
			name: "two disjoint writes conflict is overlap-based, no overlap here",
			a:    Footprint{Files: &Files{Mode: FileWrite, Paths: []string{"a"}}},
			b:    Footprint{Files: &Files{Mode: FileWrite, Paths: []string{"b"}}},
			want: false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Conflicts(tc.a, tc.b); got != tc.want {
				t.Errorf("Conflicts(%+v, %+v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestConflictsSandbox(t *testing.T) {
	cases := []struct {
		name     string
		opA, opB SandboxOp
		want     bool
	}{
		{"read vs read never conflicts", SandboxRead, SandboxRead, false},
		{"exec vs read conflicts", SandboxExec, SandboxRead, true},
		{"exec vs analysis conflicts", SandboxExec, SandboxAnalysis, true},
		{"deploy vs deploy conflicts", SandboxDeploy, SandboxDeploy, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := Footprint{Sandbox: &Sandbox{Op: tc.opA}}
			b := Footprint{Sandbox: &Sandbox{Op: tc.opB}}
			if got := Conflicts(a, b); got != tc.want {
				t.Errorf("Conflicts(%v, %v) = %v, want %v", tc.opA, tc.opB, got, tc.want)
			}
		})
	}
}

func TestConflictsBlueprintAndGitCommit(t *testing.T) {
	if !Conflicts(Footprint{Blueprint: true}, Footprint{Blueprint: true}) {
		t.Error("two blueprint writers should conflict")
	}
	if Conflicts(Footprint{Blueprint: true}, Footprint{}) {
		t.Error("a lone blueprint writer should not conflict with an empty footprint")
	}

	commit := Footprint{GitCommit: true}
	writesFile := Footprint{Files: &Files{Mode: FileWrite, Paths: []string{"a"}}}
	readsFile := Footprint{Files: &Files{Mode: FileRead, Paths: []string{"a"}}}

	if !Conflicts(commit, writesFile) {
		t.Error("a git commit should conflict with any concurrent file write")
	}
	if Conflicts(commit, readsFile) {
		t.Error("a git commit should not conflict with a concurrent read")
	}
}

func TestMergeFilesEscalatesToWriteAndDedupes(t *testing.T) {
	a := Footprint{Files: &Files{Mode: FileRead, Paths: []string{"x", "y"}}}
	b := Footprint{Files: &Files{Mode: FileWrite, Paths: []string{"y", "z"}}}
	merged := Merge(a, b)

	if merged.Files.Mode != FileWrite {
		t.Errorf("merged mode = %v, want write", merged.Files.Mode)
	}
	if len(merged.Files.Paths) != 3 {
		t.Errorf("merged paths = %v, want 3 deduped entries", merged.Files.Paths)
	}
}

func TestMergeAllFilesWins(t *testing.T) {
	a := Footprint{Files: &Files{Mode: FileRead, Paths: []string{"x"}}}
	b := Footprint{Files: &Files{Mode: FileRead, AllFiles: true}}
	merged := Merge(a, b)
	if !merged.Files.AllFiles {
		t.Error("merging with an all-files footprint should stay all-files")
	}
}
