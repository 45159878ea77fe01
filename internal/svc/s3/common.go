package s3

import "github.com/aws/aws-sdk-go/aws"

var (
	DefaultCacheControl = aws.String("public, max-age=86400")
	AclPublicRead       = aws.String("public-read")
)

type Options struct {
	Region      string
	Endpoint    string
	AccessToken string
	SecretKey   string
}
