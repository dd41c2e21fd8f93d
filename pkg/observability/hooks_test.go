package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	cv := NoopConversionHooks{}
	cv.OnDecodeStart(ctx, 2048)
	cv.OnDecodeComplete(ctx, 2, 0, time.Second, nil)
	cv.OnPageStart(ctx, 0, "Page-1")
	cv.OnPageComplete(ctx, 0, "Page-1", 3, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "convert")
	c.OnCacheMiss(ctx, "convert")
	c.OnCacheSet(ctx, "convert", 1024)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Conversion().(NoopConversionHooks); !ok {
		t.Error("Conversion() should return NoopConversionHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	customConversion := &testConversionHooks{}
	SetConversionHooks(customConversion)
	if Conversion() != customConversion {
		t.Error("SetConversionHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	Reset()
	if _, ok := Conversion().(NoopConversionHooks); !ok {
		t.Error("Reset() should restore NoopConversionHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testConversionHooks{}
	SetConversionHooks(custom)

	SetConversionHooks(nil)
	SetCacheHooks(nil)

	if Conversion() != custom {
		t.Error("SetConversionHooks(nil) should be ignored")
	}

	Reset()
}

type testConversionHooks struct{ NoopConversionHooks }
type testCacheHooks struct{ NoopCacheHooks }
