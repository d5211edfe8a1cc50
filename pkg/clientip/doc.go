// Package clientip extracts real client IP addresses from HTTP requests.
//
// Stream handlers use it to tag connection logs with the subscriber's address
// when the service runs behind proxies, load balancers or CDNs.
//
// Headers are checked in this order, first valid address wins:
//  1. CF-Connecting-IP (Cloudflare)
//  2. DO-Connecting-IP (DigitalOcean)
//  3. X-Forwarded-For (leftmost entry)
//  4. X-Real-IP
//  5. RemoteAddr
//
// Unparsable values and 0.0.0.0 are skipped. Results are normalized with
// net.IP.String, so IPv4-mapped IPv6 addresses come back in dotted form.
// When nothing parses, GetIP returns RemoteAddr unchanged.
//
//	ip := clientip.GetIP(r)
//	log.InfoContext(r.Context(), "subscriber connected", logger.ClientIP(ip))
package clientip
