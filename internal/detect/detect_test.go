package detect

import (
	"testing"

	"github.com/spf13/afero"
)

func TestDetectFramework(t *testing.T) {
	tests := []struct {
		name  string
		want  string
		files map[string]string
	}{
		{name: "laravel", want: "laravel", files: map[string]string{"/p/composer.json": `{"require":{"php":"^8.2","laravel/framework":"^12.0"}}`}},
		{name: "magento before laravel", want: "magento", files: map[string]string{"/p/composer.json": `{"require":{"laravel/framework":"^12.0","magento/framework":"*"}}`}},
		{name: "nextjs", want: "nextjs", files: map[string]string{"/p/package.json": `{"dependencies":{"react":"19.0.0","next":"15.1.0"}}`}},
		{name: "nestjs wins over express", want: "nestjs", files: map[string]string{"/p/package.json": `{"dependencies":{"express":"^4","@nestjs/core":"^10"}}`}},
		{name: "expo from devDependencies", want: "expo-react-native", files: map[string]string{"/p/package.json": `{"devDependencies":{"expo":"~52.0.0"}}`}},
		{name: "flutter", want: "flutter", files: map[string]string{"/p/pubspec.yaml": "name: app\ndependencies:\n  flutter:\n    sdk: flutter\n"}},
		{name: "nested project", want: "nextjs", files: map[string]string{"/p/apps/web/package.json": `{"dependencies":{"next":"15"}}`}},
		{name: "node_modules ignored", want: "", files: map[string]string{"/p/node_modules/next/package.json": `{"dependencies":{"next":"15"}}`}},
		{name: "malformed manifest", want: "", files: map[string]string{"/p/package.json": `{"dependencies":`}},
		{name: "empty project", want: "", files: map[string]string{"/p/README.md": "# hi"}},
		{name: "root wins over nested", want: "laravel", files: map[string]string{
			"/p/composer.json":         `{"require":{"laravel/framework":"^12.0"}}`,
			"/p/frontend/package.json": `{"dependencies":{"next":"15"}}`,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			for path, content := range tt.files {
				afero.WriteFile(fs, path, []byte(content), 0644)
			}

			got, err := DetectFramework(fs, "/p")
			if err != nil {
				t.Fatalf("DetectFramework() error: %v", err)
			}
			if got.Framework != tt.want {
				t.Errorf("Framework = %q, want %q", got.Framework, tt.want)
			}
			if got.Found() != (tt.want != "") {
				t.Errorf("Found() = %v", got.Found())
			}
		})
	}
}
