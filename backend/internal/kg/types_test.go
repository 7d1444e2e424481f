package kg

import "testing"

func TestValidPair(t *testing.T) {
	tests := []struct {
		name string
		edge Edge
		want bool
	}{
		{"family person-person", Edge{Type: EdgeFamilyOf, FromType: NodePerson, ToType: NodePerson}, true},
		{"family person-place", Edge{Type: EdgeFamilyOf, FromType: NodePerson, ToType: NodePlace}, false},
		{"friend person-person", Edge{Type: EdgeFriendOf, FromType: NodePerson, ToType: NodePerson}, true},
		{"remembers person-person", Edge{Type: EdgeRemembersWith, FromType: NodePerson, ToType: NodePerson}, true},
		{"visited person-person", Edge{Type: EdgeVisitedPlaceWith, FromType: NodePerson, ToType: NodePerson}, true},
		{"lives person-place", Edge{Type: EdgeLivesIn, FromType: NodePerson, ToType: NodePlace}, true},
		{"lives person-person", Edge{Type: EdgeLivesIn, FromType: NodePerson, ToType: NodePerson}, false},
		{"attended person-event", Edge{Type: EdgeAttended, FromType: NodePerson, ToType: NodeEvent}, true},
		{"attended person-theme", Edge{Type: EdgeAttended, FromType: NodePerson, ToType: NodeTheme}, false},
		{"enjoys person-food", Edge{Type: EdgeEnjoys, FromType: NodePerson, ToType: NodeFood}, true},
		{"enjoys person-song", Edge{Type: EdgeEnjoys, FromType: NodePerson, ToType: NodeSong}, true},
		{"enjoys person-artist", Edge{Type: EdgeEnjoys, FromType: NodePerson, ToType: NodeArtist}, true},
		{"enjoys person-event", Edge{Type: EdgeEnjoys, FromType: NodePerson, ToType: NodeEvent}, true},
		{"enjoys person-theme", Edge{Type: EdgeEnjoys, FromType: NodePerson, ToType: NodeTheme}, true},
		{"enjoys person-place", Edge{Type: EdgeEnjoys, FromType: NodePerson, ToType: NodePlace}, false},
		{"enjoys place-food", Edge{Type: EdgeEnjoys, FromType: NodePlace, ToType: NodeFood}, false},
		{"avoid person-theme", Edge{Type: EdgeAvoidTopic, FromType: NodePerson, ToType: NodeTheme}, true},
		{"avoid person-person", Edge{Type: EdgeAvoidTopic, FromType: NodePerson, ToType: NodePerson}, false},
		{"photo anything", Edge{Type: EdgePhotoShows, FromType: NodePlace, ToType: NodeSong}, true},
		{"unknown type", Edge{Type: EdgeType("likes"), FromType: NodePerson, ToType: NodePerson}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidPair(tt.edge); got != tt.want {
				t.Errorf("ValidPair(%s %s->%s) = %v, want %v",
					tt.edge.Type, tt.edge.FromType, tt.edge.ToType, got, tt.want)
			}
		})
	}
}

func TestEdgeFact_FirstPerson(t *testing.T) {
	tests := []struct {
		edge Edge
		want string
	}{
		{Edge{Type: EdgeLivesIn, FromName: "User", ToName: "Toa Payoh"}, "Lives in Toa Payoh"},
		{Edge{Type: EdgeFamilyOf, FromName: "User", ToName: "Emily", Props: map[string]any{"role": "daughter"}}, "Family: Emily (daughter)"},
		{Edge{Type: EdgeFriendOf, FromName: "User", ToName: "John"}, "Friends with John"},
		{Edge{Type: EdgeEnjoys, FromName: "User", ToName: "Korean food"}, "Enjoys Korean food"},
		{Edge{Type: EdgeAttended, FromName: "User", ToName: "National Day Parade"}, "Attended National Day Parade"},
		{Edge{Type: EdgeVisitedPlaceWith, FromName: "User", ToName: "Emily"}, "Visited a place with Emily"},
		{Edge{Type: EdgeRemembersWith, FromName: "User", ToName: "John"}, "Remembers moments with John"},
	}

	for _, tt := range tests {
		got, ok := tt.edge.Fact("User")
		if !ok {
			t.Errorf("Expected fact for %s edge", tt.edge.Type)
			continue
		}
		if got != tt.want {
			t.Errorf("Fact = %q, want %q", got, tt.want)
		}
	}
}

func TestEdgeFact_ThirdPerson(t *testing.T) {
	edge := Edge{Type: EdgeLivesIn, FromName: "Emily", ToName: "Toa Payoh"}
	got, ok := edge.Fact("User")
	if !ok || got != "Emily lives in Toa Payoh" {
		t.Errorf("Fact = %q (ok=%v), want %q", got, ok, "Emily lives in Toa Payoh")
	}

	edge = Edge{Type: EdgeEnjoys, FromName: "John", ToName: "Korean food"}
	got, ok = edge.Fact("User")
	if !ok || got != "John enjoys Korean food" {
		t.Errorf("Fact = %q (ok=%v), want %q", got, ok, "John enjoys Korean food")
	}
}

func TestEdgeFact_SpeakerMatchIsCaseInsensitive(t *testing.T) {
	edge := Edge{Type: EdgeEnjoys, FromName: " user ", ToName: "gardening"}
	got, ok := edge.Fact("User")
	if !ok || got != "Enjoys gardening" {
		t.Errorf("Fact = %q (ok=%v), want first-person phrasing", got, ok)
	}
}

func TestEdgeFact_NoTemplate(t *testing.T) {
	if _, ok := (Edge{Type: EdgeAvoidTopic, FromName: "User", ToName: "politics"}).Fact("User"); ok {
		t.Error("avoid_topic must not render as a fact")
	}
	if _, ok := (Edge{Type: EdgePhotoShows, FromName: "photo1", ToName: "Emily"}).Fact("User"); ok {
		t.Error("photo_shows must not render as a fact")
	}
}
