package models

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		url   string
		story bool
		reel  bool
		tik   bool
	}{
		{"https://www.facebook.com/groups/1/posts/2", false, false, false},
		{"https://www.facebook.com/stories/12345", true, false, false},
		{"https://www.facebook.com/story.php?id=1", true, false, false},
		{"https://www.facebook.com/reel/98765", false, true, false},
		{"https://www.tiktok.com/@user/video/1", false, false, true},
		{"https://www.facebook.com/REEL/5", false, true, false},
	}

	for _, tt := range tests {
		c := Classify(tt.url)
		if c.IsStory != tt.story || c.IsReel != tt.reel || c.IsTikTok != tt.tik {
			t.Errorf("Classify(%q) = %+v, want story=%v reel=%v tiktok=%v",
				tt.url, c, tt.story, tt.reel, tt.tik)
		}
	}
}
