package cache

import "testing"

// The key namespace is a wire contract shared with every consumer of the
// invalidation bus: any drift silently breaks targeted deletes.
func TestKeyNamespace(t *testing.T) {
	cases := []struct {
		got  string
		want string
	}{
		{ChannelKey("c1"), "channel:c1"},
		{ChannelsCreatedKey("u1"), "channels:created:u1"},
		{ChannelMembersKey("c1"), "channels:members:c1"},
		{TopicKey("t1"), "topic:t1"},
		{TopicMembersKey("t1"), "topics:members:t1"},
		{TopicsOfChannelKey("c1"), "topics:all:channel:c1"},
		{UserKey("u1"), "user:u1"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Fatalf("key mismatch: got %q want %q", c.got, c.want)
		}
	}
}

func TestTTLClasses(t *testing.T) {
	if TTLAggregate.Seconds() != 3600 {
		t.Fatalf("aggregate TTL: got %v want 3600s", TTLAggregate)
	}
	if TTLList.Seconds() != 7200 {
		t.Fatalf("list TTL: got %v want 7200s", TTLList)
	}
}
