package milvus

import "testing"

// TestPartitionName 分区名对同一项目稳定，且对非 ASCII 项目名也是合法标识
func TestPartitionName(t *testing.T) {
	a := PartitionName("My Novel")
	b := PartitionName("My Novel")
	if a != b {
		t.Fatalf("partition name not stable: %s != %s", a, b)
	}

	if a == PartitionName("Other Novel") {
		t.Fatal("distinct projects mapped to the same partition")
	}

	// md5 十六进制 + 前缀，长度固定
	if len(a) != len("proj_")+32 {
		t.Fatalf("unexpected partition name length: %q", a)
	}
	for _, c := range a[len("proj_"):] {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Fatalf("non-hex character %q in partition name %q", c, a)
		}
	}
}
