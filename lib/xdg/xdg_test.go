package xdg

import (
	"runtime"
	"testing"
)

func TestCachePath(t *testing.T) {
	t.Setenv("HOME", "/home/user")
	vectors := []struct {
		args     []string
		env      map[string]string
		expected map[string]string
	}{
		{
			args: []string{"sumview", "flags"},
			expected: map[string]string{
				"":       "/home/user/.cache/sumview/flags",
				"darwin": "/home/user/Library/Caches/sumview/flags",
			},
		},
		{
			args:     []string{"sumview", "INBOX/sub"},
			env:      map[string]string{"XDG_CACHE_HOME": "/home/x/.cache"},
			expected: map[string]string{"": "/home/x/.cache/sumview/INBOX/sub"},
		},
		{
			args:     []string{},
			env:      map[string]string{"XDG_CACHE_HOME": "/blah"},
			expected: map[string]string{"": "/blah"},
		},
	}
	for _, vec := range vectors {
		expected, found := vec.expected[runtime.GOOS]
		if !found {
			expected = vec.expected[""]
		}
		t.Run(expected, func(t *testing.T) {
			for key, value := range vec.env {
				t.Setenv(key, value)
			}
			res := CachePath(vec.args...)
			if res != expected {
				t.Errorf("got %q expected %q", res, expected)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("HOME", "/home/user")
	vectors := []struct {
		args     []string
		env      map[string]string
		expected map[string]string
	}{
		{
			args: []string{"sumview", "sumview.conf"},
			expected: map[string]string{
				"":       "/home/user/.config/sumview/sumview.conf",
				"darwin": "/home/user/Library/Preferences/sumview/sumview.conf",
			},
		},
		{
			args:     []string{"sumview", "sumview.conf"},
			env:      map[string]string{"XDG_CONFIG_HOME": "/users/x/.config"},
			expected: map[string]string{"": "/users/x/.config/sumview/sumview.conf"},
		},
		{
			args:     []string{},
			env:      map[string]string{"XDG_CONFIG_HOME": "/blah"},
			expected: map[string]string{"": "/blah"},
		},
	}
	for _, vec := range vectors {
		expected, found := vec.expected[runtime.GOOS]
		if !found {
			expected = vec.expected[""]
		}
		t.Run(expected, func(t *testing.T) {
			for key, value := range vec.env {
				t.Setenv(key, value)
			}
			res := ConfigPath(vec.args...)
			if res != expected {
				t.Errorf("got %q expected %q", res, expected)
			}
		})
	}
}
