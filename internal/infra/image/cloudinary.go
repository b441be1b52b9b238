package image

import (
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
)

// CloudinaryResolver は画像参照（public id または外部URL）を配信URLにする。
// 外部URLは fetch 配信で変換をかける。
type CloudinaryResolver struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryResolver(cloudName, apiKey, apiSecret string) (*CloudinaryResolver, error) {
	if cloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud name is required")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	cld.Config.URL.Secure = true
	return &CloudinaryResolver{cld: cld}, nil
}

func (r *CloudinaryResolver) URL(ref string, width, height int) (string, error) {
	if ref == "" {
		return "", nil
	}

	img, err := r.cld.Image(ref)
	if err != nil {
		return "", fmt.Errorf("build image url: %w", err)
	}
	if isRemote(ref) {
		img.DeliveryType = "fetch"
	}
	img.Transformation = transformation(width, height)

	return img.String()
}

// サイズ指定があれば c_fill で切り抜く
func transformation(width, height int) string {
	var parts []string
	if width > 0 {
		parts = append(parts, fmt.Sprintf("w_%d", width))
	}
	if height > 0 {
		parts = append(parts, fmt.Sprintf("h_%d", height))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(append([]string{"c_fill"}, parts...), ",")
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://")
}

// DirectResolver はCloudinary未設定のとき用。外部URLだけそのまま返す。
type DirectResolver struct{}

func (DirectResolver) URL(ref string, width, height int) (string, error) {
	if isRemote(ref) {
		return ref, nil
	}
	return "", nil
}
