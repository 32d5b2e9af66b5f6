package vst3preset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClassID = "5653544D594944447465737470726573" // 32 ASCII chars

func TestWriteReadRoundTrip(t *testing.T) {
	comp := bytes.Repeat([]byte{0xAB}, 100)
	cont := bytes.Repeat([]byte{0xCD}, 200)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testClassID, [][]byte{comp, cont}))

	p, err := Read(&buf)
	require.NoError(t, err)

	assert.Equal(t, testClassID, p.ClassID)
	require.Len(t, p.Chunks, 2)

	assert.Equal(t, ChunkIDComponent, p.Chunks[0].ID)
	assert.Equal(t, int64(HeaderSize), p.Chunks[0].Offset)
	assert.Equal(t, int64(100), p.Chunks[0].Size)

	assert.Equal(t, ChunkIDController, p.Chunks[1].ID)
	assert.Equal(t, int64(HeaderSize+100), p.Chunks[1].Offset)
	assert.Equal(t, int64(200), p.Chunks[1].Size)

	assert.Equal(t, comp, p.ChunkData(ChunkIDComponent))
	assert.Equal(t, cont, p.ChunkData(ChunkIDController))
	assert.Len(t, p.Data, 300)
}

func TestReadBadHeaderMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testClassID, [][]byte{{1, 2, 3}}))
	data := buf.Bytes()
	copy(data, "NOPE")

	_, err := Read(bytes.NewReader(data))
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Error(), "header magic")
}

func TestReadBadListMagic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testClassID, [][]byte{{1, 2, 3}}))
	data := buf.Bytes()
	copy(data[HeaderSize+3:], "NOPE")

	_, err := Read(bytes.NewReader(data))
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe.Error(), "chunk list magic")
}

func TestReadTruncated(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testClassID, [][]byte{bytes.Repeat([]byte{7}, 64)}))
	data := buf.Bytes()

	for _, n := range []int{0, 3, 20, HeaderSize, HeaderSize + 10} {
		_, err := Read(bytes.NewReader(data[:n]))
		require.Error(t, err, "prefix of %d bytes", n)
	}
}

func TestWriteValidation(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, "short", [][]byte{{1}})
	require.Error(t, err)

	err = Write(&buf, testClassID, [][]byte{{1}, {2}, {3}, {4}, {5}})
	require.Error(t, err)
}

func TestReadRejectsBinaryClassID(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, testClassID, nil))
	data := buf.Bytes()
	data[8] = 0x01 // first class id byte

	_, err := Read(bytes.NewReader(data))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "non-ASCII"))
}
